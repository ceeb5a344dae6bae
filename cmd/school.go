package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/sdapi"

	"github.com/spf13/cobra"
)

var (
	flagFacilities   map[string]int
	flagPrograms     []string
	flagSubjects     []string
	flagLatitude     float64
	flagLongitude    float64
	flagConnectivity string
	flagHasPower     bool
)

var schoolCmd = &cobra.Command{
	Use:   "school",
	Short: "Show or update the school profile",
}

var schoolShowCmd = &cobra.Command{
	Use:   "show [id-or-code]",
	Short: "Show a school profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchoolShow,
}

var schoolPatchCmd = &cobra.Command{
	Use:   "patch [id-or-code]",
	Short: "Update facilities, location, programs or subjects",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchoolPatch,
}

func init() {
	f := schoolPatchCmd.Flags()
	f.StringToIntVar(&flagFacilities, "facility", nil, "Facility counts, e.g. classrooms=8,latrines=4")
	f.StringSliceVar(&flagPrograms, "program", nil, "Programs offered (replaces the list)")
	f.StringSliceVar(&flagSubjects, "subject", nil, "Subjects taught (replaces the list)")
	f.Float64Var(&flagLatitude, "lat", 0, "Latitude")
	f.Float64Var(&flagLongitude, "lng", 0, "Longitude")
	f.StringVar(&flagConnectivity, "connectivity", "", "Network connectivity")
	f.BoolVar(&flagHasPower, "power", false, "School has electricity")

	schoolCmd.AddCommand(schoolShowCmd, schoolPatchCmd)
	rootCmd.AddCommand(schoolCmd)
}

// schoolIdentifier is the positional id or code, else the selected school code.
func schoolIdentifier(cfg config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return schoolCode(cfg)
}

// fetchSchool resolves a school by id or code.
func fetchSchool(cfg config.Config, client *sdapi.Client, ident string) (*model.School, error) {
	progress("Fetching school %s...", ident)
	ctx, cancel := apiContext(cfg)
	defer cancel()
	s, err := client.FetchSchool(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("fetching school %s: %w", ident, err)
	}
	return s, nil
}

func runSchoolShow(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	ident, err := schoolIdentifier(cfg, args)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	s, err := fetchSchool(cfg, client, ident)
	if err != nil {
		return err
	}
	printSchool(s)
	return nil
}

func runSchoolPatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ident, err := schoolIdentifier(cfg, args)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	set := cmd.Flags().Changed
	var patch model.SchoolPatch
	if set("facility") {
		patch.Facilities = flagFacilities
	}
	if set("program") {
		patch.Programs = flagPrograms
	}
	if set("subject") {
		patch.Subjects = flagSubjects
	}

	id := ident
	var current *model.School
	if !sdapi.IsObjectID(ident) || set("lat") || set("lng") || set("connectivity") || set("power") {
		current, err = fetchSchool(cfg, client, ident)
		if err != nil {
			return err
		}
		id = current.ID
	}
	if set("lat") || set("lng") || set("connectivity") || set("power") {
		loc := model.Location{}
		if current.Location != nil {
			loc = *current.Location
		}
		if set("lat") {
			loc.Latitude = flagLatitude
		}
		if set("lng") {
			loc.Longitude = flagLongitude
		}
		if set("connectivity") {
			loc.Connectivity = flagConnectivity
		}
		if set("power") {
			loc.HasPower = flagHasPower
		}
		patch.Location = &loc
	}

	ctx, cancel := apiContext(cfg)
	defer cancel()
	s, err := client.PatchSchool(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("updating school: %w", err)
	}
	fmt.Println("  School profile updated.")
	printSchool(s)
	return nil
}

func printSchool(s *model.School) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(s.Name)))
	fmt.Println()

	rows := [][]string{
		{"Code", s.Code},
		{"ID", s.ID},
		{"County", s.County},
		{"Payam", s.Payam},
	}
	if s.Ownership != "" {
		rows = append(rows, []string{"Ownership", s.Ownership})
	}
	if l := s.Location; l != nil {
		rows = append(rows,
			[]string{cli.SeparatorRow},
			[]string{"Location", strconv.FormatFloat(l.Latitude, 'f', 5, 64) + ", " + strconv.FormatFloat(l.Longitude, 'f', 5, 64)},
			[]string{"Connectivity", l.Connectivity},
			[]string{"Power", cli.FormatBool(l.HasPower)},
		)
	}
	if len(s.Programs) > 0 {
		rows = append(rows, []string{"Programs", strings.Join(s.Programs, ", ")})
	}
	if len(s.Subjects) > 0 {
		rows = append(rows, []string{"Subjects", strings.Join(s.Subjects, ", ")})
	}
	if e := s.Enrollment; e != nil {
		rows = append(rows,
			[]string{cli.SeparatorRow},
			[]string{"Enrollment", fmt.Sprintf("%d, complete: %s", e.Year, cli.FormatBool(e.Complete))},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Profile", Headers: []string{"Field", "Value"}, Rows: rows}))
	fmt.Println()

	if len(s.Facilities) > 0 {
		names := make([]string, 0, len(s.Facilities))
		for k := range s.Facilities {
			names = append(names, k)
		}
		sort.Strings(names)
		var frows [][]string
		for _, k := range names {
			frows = append(frows, []string{k, cli.FormatNumber(int64(s.Facilities[k]))})
		}
		fmt.Print(cli.RenderTable(cli.Table{Title: "Facilities", Headers: []string{"Facility", "Count"}, Rows: frows}))
		fmt.Println()
	}
}
