package metrics

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// Collector records annealing trials and named metric series during a run.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	trials []models.TrialRecord

	// metric name -> label key -> points
	series map[string]map[string][]*models.MetricPoint

	instruments *Instruments
	algorithm   string
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[string]map[string][]*models.MetricPoint),
	}
}

// WithInstruments mirrors recorded trials and gauges into Prometheus
// instruments, labelled with algorithm.
func (c *Collector) WithInstruments(ins *Instruments, algorithm string) *Collector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instruments = ins
	c.algorithm = algorithm
	return c
}

// Start marks the start of metric collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of metric collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// RecordTrial appends one trial to the trace.
func (c *Collector) RecordTrial(rec models.TrialRecord) {
	c.mu.Lock()
	c.trials = append(c.trials, rec)
	ins, algorithm := c.instruments, c.algorithm
	c.mu.Unlock()

	if ins != nil {
		ins.ObserveTrial(algorithm, rec.Accepted)
	}
}

// Trials returns a copy of the recorded trials in recording order.
func (c *Collector) Trials() []models.TrialRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.trials)
}

// TrialCount returns the number of recorded trials.
func (c *Collector) TrialCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trials)
}

// Record records a metric value at a specific timestamp
func (c *Collector) Record(name string, value float64, timestamp time.Time, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.series[name] == nil {
		c.series[name] = make(map[string][]*models.MetricPoint)
	}
	c.series[name][key] = append(c.series[name][key], &models.MetricPoint{
		Timestamp: timestamp,
		Name:      name,
		Value:     value,
		Labels:    copyLabels(labels),
	})
}

// RecordNow records a metric value at the current time
func (c *Collector) RecordNow(name string, value float64, labels map[string]string) {
	c.Record(name, value, time.Now(), labels)
}

// GetTimeSeries returns a copy of all points for a metric
func (c *Collector) GetTimeSeries(name string, labels map[string]string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[name][labelKey(labels)]
	if points == nil {
		return nil
	}
	result := make([]*models.MetricPoint, len(points))
	for i, p := range points {
		result[i] = &models.MetricPoint{
			Timestamp: p.Timestamp,
			Name:      p.Name,
			Value:     p.Value,
			Labels:    copyLabels(p.Labels),
		}
	}
	return result
}

// Last returns the most recent value of a metric.
func (c *Collector) Last(name string, labels map[string]string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[name][labelKey(labels)]
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}

// GetAggregation calculates aggregated statistics for a metric
func (c *Collector) GetAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[name][labelKey(labels)]
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return calculateAggregation(values)
}

// GetMetricNames returns all metric names that have been collected, sorted
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSummary returns a summary of the run: trial counts, an aggregation of
// trial energies and one aggregation per unlabelled metric.
func (c *Collector) GetSummary() *models.MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := &models.MetricsSummary{
		StartTime:    c.startTime,
		EndTime:      c.endTime,
		Duration:     c.endTime.Sub(c.startTime),
		Trials:       len(c.trials),
		Aggregations: make(map[string]*models.Aggregation),
	}

	energies := make([]float64, len(c.trials))
	for i, tr := range c.trials {
		energies[i] = tr.Energy
		if tr.Accepted {
			summary.Accepted++
		}
	}
	if agg := calculateAggregation(energies); agg != nil {
		summary.Aggregations[MetricTrialEnergy] = agg
	}

	for name, byLabel := range c.series {
		points := byLabel[""]
		if len(points) == 0 {
			continue
		}
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		summary.Aggregations[name] = calculateAggregation(values)
	}
	return summary
}

// Clear clears all collected metrics
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.trials = nil
	c.series = make(map[string]map[string][]*models.MetricPoint)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}

// labelKey creates a key from labels for map lookup
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

// copyLabels creates a copy of the labels map
func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// calculateAggregation calculates aggregated statistics from values
func calculateAggregation(values []float64) *models.Aggregation {
	if len(values) == 0 {
		return nil
	}
	lo, hi := utils.MinMax(values)
	sum := utils.Sum(values)
	return &models.Aggregation{
		Count: int64(len(values)),
		Sum:   sum,
		Min:   lo,
		Max:   hi,
		Mean:  utils.Mean(values),
		P50:   utils.Percentile(values, 50),
		P95:   utils.Percentile(values, 95),
		P99:   utils.Percentile(values, 99),
	}
}
