package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAcceptanceRatio(t *testing.T) {
	var nilSummary *MetricsSummary
	if got := nilSummary.AcceptanceRatio(); got != 0 {
		t.Errorf("Expected 0 for nil summary, got %f", got)
	}

	s := &MetricsSummary{Trials: 8, Accepted: 2}
	if got := s.AcceptanceRatio(); got != 0.25 {
		t.Errorf("Expected 0.25, got %f", got)
	}

	empty := &MetricsSummary{}
	if got := empty.AcceptanceRatio(); got != 0 {
		t.Errorf("Expected 0 for no trials, got %f", got)
	}
}

func TestRunSummaryJSONOmitsUnsetVariantFields(t *testing.T) {
	size := 12
	summary := RunSummary{
		ID:          "run-1",
		Algorithm:   "dominance_based_multiobjective_simulated_annealing",
		Status:      RunStatusCompleted,
		Epochs:      2,
		ArchiveSize: &size,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "best_error") {
		t.Errorf("Expected best_error to be omitted, got %s", text)
	}
	if !strings.Contains(text, `"archive_size":12`) {
		t.Errorf("Expected archive_size 12, got %s", text)
	}
	if !strings.Contains(text, `"status":"completed"`) {
		t.Errorf("Expected completed status, got %s", text)
	}
}
