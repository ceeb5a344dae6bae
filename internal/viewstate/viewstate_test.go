package viewstate

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"", State{Tab: "overview"}, false},
		{"?tab=budget&edit=true&code=ABC123&year=2027&position=3",
			State{Tab: "budget", Edit: true, Code: "ABC123", Year: 2027, Position: 3}, false},
		{"tab=review&tab2=meta", State{Tab: "review", Tab2: "meta"}, false},
		{"tab=nope", State{Tab: "overview"}, false},
		{"edit=maybe", State{}, true},
		{"year=next", State{}, true},
		{"position=-1", State{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestEncodeParse(t *testing.T) {
	s := State{Tab: "revenue", Tab2: "capex", Edit: true, Code: "JUB 01", Year: 2027, Position: 2}
	got, err := Parse(s.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Errorf("got %+v, want %+v", got, s)
	}
	if enc := (State{Tab: "overview"}).Encode(); enc != "tab=overview" {
		t.Errorf("Encode = %q", enc)
	}
}
