package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
)

func TestCollectorRecordAndGetTimeSeries(t *testing.T) {
	c := NewCollector()
	c.Start()

	now := time.Now()
	c.Record("test_metric", 10.0, now, nil)
	c.Record("test_metric", 20.0, now.Add(time.Second), nil)
	c.Record("test_metric", 30.0, now.Add(2*time.Second), nil)

	points := c.GetTimeSeries("test_metric", nil)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Value != 10.0 || points[2].Value != 30.0 {
		t.Fatalf("unexpected point values: %v, %v", points[0].Value, points[2].Value)
	}

	points[0].Value = 99
	if again := c.GetTimeSeries("test_metric", nil); again[0].Value != 10.0 {
		t.Fatalf("GetTimeSeries should return a copy")
	}

	if last, ok := c.Last("test_metric", nil); !ok || last != 30.0 {
		t.Fatalf("expected last 30, got %v (%v)", last, ok)
	}
	if _, ok := c.Last("missing", nil); ok {
		t.Fatalf("expected no value for missing metric")
	}
}

func TestCollectorLabelsAreIndependentSeries(t *testing.T) {
	c := NewCollector()
	c.RecordNow(MetricAcceptedRung, 1, CreateEpochLabels(0))
	c.RecordNow(MetricAcceptedRung, 2, CreateEpochLabels(1))
	c.RecordNow(MetricAcceptedRung, 3, CreateEpochLabels(1))

	if got := len(c.GetTimeSeries(MetricAcceptedRung, CreateEpochLabels(1))); got != 2 {
		t.Fatalf("expected 2 points for epoch 1, got %d", got)
	}
	if got := c.GetTimeSeries(MetricAcceptedRung, nil); got != nil {
		t.Fatalf("expected no unlabelled series, got %d points", len(got))
	}
}

func TestCollectorAggregation(t *testing.T) {
	c := NewCollector()
	for _, v := range []float64{1, 2, 3, 4, 5} {
		c.RecordNow("x", v, nil)
	}
	agg := c.GetAggregation("x", nil)
	if agg == nil {
		t.Fatalf("expected aggregation")
	}
	if agg.Count != 5 || agg.Sum != 15 || agg.Min != 1 || agg.Max != 5 || agg.Mean != 3 || agg.P50 != 3 {
		t.Fatalf("unexpected aggregation: %+v", agg)
	}
	if c.GetAggregation("missing", nil) != nil {
		t.Fatalf("expected nil aggregation for missing metric")
	}
}

func TestCollectorTrialsAndSummary(t *testing.T) {
	c := NewCollector()
	c.Start()
	c.RecordTrial(models.TrialRecord{Epoch: 0, Step: 0, Trial: 1, Temperature: 100, Energy: 4, Accepted: true})
	c.RecordTrial(models.TrialRecord{Epoch: 0, Step: 0, Trial: 2, Temperature: 100, Energy: 2, Accepted: false})
	RecordBestError(c, 0, 2)
	c.Stop()

	trials := c.Trials()
	if len(trials) != 2 || c.TrialCount() != 2 {
		t.Fatalf("expected 2 trials, got %d", len(trials))
	}
	trials[0].Energy = 100
	if c.Trials()[0].Energy != 4 {
		t.Fatalf("Trials should return a copy")
	}

	s := c.GetSummary()
	if s.Trials != 2 || s.Accepted != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.AcceptanceRatio() != 0.5 {
		t.Fatalf("expected acceptance ratio 0.5, got %f", s.AcceptanceRatio())
	}
	if agg := s.Aggregations[MetricTrialEnergy]; agg == nil || agg.Mean != 3 {
		t.Fatalf("unexpected trial energy aggregation: %+v", agg)
	}
	if agg := s.Aggregations[MetricBestError]; agg == nil || agg.Max != 2 {
		t.Fatalf("unexpected best error aggregation: %+v", agg)
	}

	c.Clear()
	if c.TrialCount() != 0 || len(c.GetMetricNames()) != 0 {
		t.Fatalf("expected empty collector after Clear")
	}
}

func TestCollectorMirrorsInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	ins := NewInstruments(reg)
	c := NewCollector().WithInstruments(ins, "simulated_annealing")

	c.RecordTrial(models.TrialRecord{Accepted: true})
	c.RecordTrial(models.TrialRecord{Accepted: true})
	c.RecordTrial(models.TrialRecord{Accepted: false})
	RecordArchiveSize(c, 7)
	RecordBeta(c, 0.25)

	if got := testutil.ToFloat64(ins.Trials.WithLabelValues("simulated_annealing", "accepted")); got != 2 {
		t.Fatalf("expected 2 accepted trials, got %v", got)
	}
	if got := testutil.ToFloat64(ins.Trials.WithLabelValues("simulated_annealing", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected trial, got %v", got)
	}
	if got := testutil.ToFloat64(ins.ArchiveSize); got != 7 {
		t.Fatalf("expected archive size 7, got %v", got)
	}
	if got := testutil.ToFloat64(ins.Beta); got != 0.25 {
		t.Fatalf("expected beta 0.25, got %v", got)
	}

	ins.ObserveEvaluation("h2", 10*time.Millisecond, nil)
	if got := testutil.ToFloat64(ins.Evaluations.WithLabelValues("h2", "success")); got != 1 {
		t.Fatalf("expected 1 successful evaluation, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "ffoptimum_system_evaluation_seconds"); err != nil || n != 1 {
		t.Fatalf("expected 1 histogram series, got %d (%v)", n, err)
	}
}
