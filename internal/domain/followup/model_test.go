package followup

import (
	"regexp"
	"testing"
)

func TestNewRefID_Format(t *testing.T) {
	pat := regexp.MustCompile(`^PAT-[0-9A-F]{8}$`)
	for i := 0; i < 10; i++ {
		id := NewRefID(PatientIDPrefix)
		if !pat.MatchString(id) {
			t.Fatalf("unexpected patient ref id %q", id)
		}
	}

	vis := regexp.MustCompile(`^VIS-[0-9A-F]{8}$`)
	if id := NewRefID(VisitIDPrefix); !vis.MatchString(id) {
		t.Fatalf("unexpected visit ref id %q", id)
	}
}

func TestNewRefID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRefID(VisitIDPrefix)
		if seen[id] {
			t.Fatalf("duplicate ref id %q", id)
		}
		seen[id] = true
	}
}
