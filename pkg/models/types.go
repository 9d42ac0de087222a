package models

import "time"

// RunStatus represents the status of an optimization run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// TrialRecord is one annealing trial as written to the error trace.
// Energy is the scalar error for single-objective runs and the
// dominance pseudo-energy for multi-objective runs.
type TrialRecord struct {
	Epoch       int     `json:"epoch"`
	Step        int     `json:"step"`
	Trial       int     `json:"trial"`
	Temperature float64 `json:"temperature"`
	Energy      float64 `json:"energy"`
	Accepted    bool    `json:"accepted"`
}

// MetricPoint represents a single metric data point
type MetricPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Aggregation represents aggregated statistics over a metric series
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// MetricsSummary contains a summary of all metrics collected during a run
type MetricsSummary struct {
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Duration     time.Duration           `json:"duration"`
	Trials       int                     `json:"trials"`
	Accepted     int                     `json:"accepted"`
	Aggregations map[string]*Aggregation `json:"aggregations,omitempty"`
}

// AcceptanceRatio returns the fraction of accepted trials.
func (s *MetricsSummary) AcceptanceRatio() float64 {
	if s == nil || s.Trials == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Trials)
}

// RunSummary is printed by the CLI at the end of a run
type RunSummary struct {
	ID             string             `json:"id"`
	Algorithm      string             `json:"algorithm"`
	Status         RunStatus          `json:"status"`
	Epochs         int                `json:"epochs"`
	StopReason     string             `json:"stop_reason,omitempty"`
	InitialError   *float64           `json:"initial_error,omitempty"`
	InitialFitness map[string]float64 `json:"initial_fitness,omitempty"`
	BestError      *float64           `json:"best_error,omitempty"`
	ArchiveSize    *int               `json:"archive_size,omitempty"`
	Objectives     []string           `json:"objectives,omitempty"`
	Removed        []string           `json:"removed_objectives,omitempty"`
	OutputDir      string             `json:"output_directory"`
	Duration       string             `json:"duration"`
	Metrics        *MetricsSummary    `json:"metrics,omitempty"`
	Error          string             `json:"error,omitempty"`
}
