// Package viewstate encodes which dashboard view is showing as a URL query
// string, so a view can be bookmarked, passed on the command line and
// restored on the next start.
package viewstate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Known top-level tabs.
var Tabs = []string{"overview", "revenue", "budget", "review"}

// State is the parsed view state.
type State struct {
	Tab      string
	Tab2     string
	Edit     bool
	Code     string
	Year     int
	Position int
}

// Parse reads a query string such as "tab=budget&edit=true&year=2027". A
// leading "?" is allowed. Unknown keys are ignored; an unknown tab falls back
// to the first tab.
func Parse(query string) (State, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))
	if err != nil {
		return State{}, fmt.Errorf("viewstate: %w", err)
	}
	s := State{
		Tab:  q.Get("tab"),
		Tab2: q.Get("tab2"),
		Code: q.Get("code"),
	}
	if TabIndex(s.Tab) < 0 {
		s.Tab = Tabs[0]
	}
	if v := q.Get("edit"); v != "" {
		s.Edit, err = strconv.ParseBool(v)
		if err != nil {
			return State{}, fmt.Errorf("viewstate: edit: %w", err)
		}
	}
	if v := q.Get("year"); v != "" {
		if s.Year, err = strconv.Atoi(v); err != nil {
			return State{}, fmt.Errorf("viewstate: year: %w", err)
		}
	}
	if v := q.Get("position"); v != "" {
		if s.Position, err = strconv.Atoi(v); err != nil || s.Position < 0 {
			return State{}, fmt.Errorf("viewstate: position %q is not a non-negative integer", v)
		}
	}
	return s, nil
}

// Encode renders the state as a query string, omitting empty values.
func (s State) Encode() string {
	q := url.Values{}
	if s.Tab != "" {
		q.Set("tab", s.Tab)
	}
	if s.Tab2 != "" {
		q.Set("tab2", s.Tab2)
	}
	if s.Edit {
		q.Set("edit", "true")
	}
	if s.Code != "" {
		q.Set("code", s.Code)
	}
	if s.Year != 0 {
		q.Set("year", strconv.Itoa(s.Year))
	}
	if s.Position != 0 {
		q.Set("position", strconv.Itoa(s.Position))
	}
	return q.Encode()
}

// TabIndex returns the index of a tab name, or -1.
func TabIndex(name string) int {
	for i, t := range Tabs {
		if strings.EqualFold(t, name) {
			return i
		}
	}
	return -1
}
