package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	runID := Generate()

	// Check format
	if !strings.HasPrefix(runID, "run-") {
		t.Errorf("expected ID to start with 'run-', got %s", runID)
	}

	// Check uniqueness
	runID2 := Generate()
	if runID == runID2 {
		t.Error("expected different IDs for consecutive calls")
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		runID := Generate()
		if seen[runID] {
			t.Errorf("duplicate ID generated: %s", runID)
		}
		seen[runID] = true
	}
}
