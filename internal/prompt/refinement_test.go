package prompt

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRefinement(t *testing.T) {
	tests := []struct {
		input string
		want  Refinement
		ok    bool
	}{
		{"creative", Creative, true},
		{"Kreatif", Creative, true},
		{"TECHNICAL", Technical, true},
		{"teknik", Technical, true},
		{" simplified ", Simplified, true},
		{"Sade", Simplified, true},
		{"creativ", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRefinement(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseRefinement(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRefinement_Fields(t *testing.T) {
	for _, r := range Refinements() {
		if !r.Valid() {
			t.Errorf("%v should be valid", r)
		}
		if r.Name() == "" || r.Label() == "" || r.Directive() == "" {
			t.Errorf("%v has empty fields", r)
		}
	}
	if Refinement(0).Valid() {
		t.Error("zero refinement should be invalid")
	}
	if got := Refinement(9).String(); got != "Refinement(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestRefinement_JSON(t *testing.T) {
	var body struct {
		Strategy Refinement `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(`{"strategy":"teknik"}`), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.Strategy != Technical {
		t.Errorf("Strategy = %v, want technical", body.Strategy)
	}

	if err := json.Unmarshal([]byte(`{"strategy":"bogus"}`), &body); err == nil {
		t.Error("expected error for unknown strategy")
	}

	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"strategy":"technical"}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestNewRecord(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	r := NewRecord("idea", "text", now)

	if len(r.ID) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(r.ID))
	}
	if r.Timestamp != 1_700_000_000_123 {
		t.Errorf("Timestamp = %d", r.Timestamp)
	}
	if r.Idea != "idea" || r.Text != "text" {
		t.Errorf("unexpected record %+v", r)
	}

	other := NewRecord("idea", "text", now)
	if other.ID == r.ID {
		t.Error("IDs should be unique")
	}
}

func TestTopSources(t *testing.T) {
	sources := []Source{{"a", "u1"}, {"b", "u2"}, {"c", "u3"}, {"d", "u4"}}
	if got := TopSources(sources, MaxDisplayedSources); len(got) != 3 || got[2].Title != "c" {
		t.Errorf("TopSources = %v", got)
	}
	if got := TopSources(sources[:2], 3); len(got) != 2 {
		t.Errorf("TopSources short = %v", got)
	}
}

func TestClampScore(t *testing.T) {
	if ClampScore(-5) != 0 || ClampScore(150) != 100 || ClampScore(70) != 70 {
		t.Error("ClampScore out of range")
	}
}
