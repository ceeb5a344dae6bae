package main

import "github.com/theirongolddev/sims/cmd"

func main() {
	cmd.Execute()
}
