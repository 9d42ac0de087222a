package metrics

import "strconv"

// Metric names recorded by the annealers.
const (
	MetricTrialEnergy  = "trial_energy"
	MetricBestError    = "best_error"
	MetricArchiveSize  = "archive_size"
	MetricBeta         = "beta"
	MetricAcceptedRung = "accepted_per_rung"
)

// RecordBestError records the best scalar error at the end of an epoch.
func RecordBestError(c *Collector, epoch int, value float64) {
	c.RecordNow(MetricBestError, value, nil)
	c.RecordNow(MetricBestError, value, CreateEpochLabels(epoch))
	if ins := c.instrumentsSnapshot(); ins != nil {
		ins.BestError.Set(value)
	}
}

// RecordArchiveSize records the archive size after an update.
func RecordArchiveSize(c *Collector, size int) {
	c.RecordNow(MetricArchiveSize, float64(size), nil)
	if ins := c.instrumentsSnapshot(); ins != nil {
		ins.ArchiveSize.Set(float64(size))
	}
}

// RecordBeta records a calibrated Metropolis sensitivity.
func RecordBeta(c *Collector, beta float64) {
	c.RecordNow(MetricBeta, beta, nil)
	if ins := c.instrumentsSnapshot(); ins != nil {
		ins.Beta.Set(beta)
	}
}

// RecordAcceptedPerRung records how many moves a rung accepted.
func RecordAcceptedPerRung(c *Collector, epoch, accepted int) {
	c.RecordNow(MetricAcceptedRung, float64(accepted), CreateEpochLabels(epoch))
}

// CreateEpochLabels creates a labels map for an epoch
func CreateEpochLabels(epoch int) map[string]string {
	return map[string]string{
		"epoch": strconv.Itoa(epoch),
	}
}

func (c *Collector) instrumentsSnapshot() *Instruments {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instruments
}
