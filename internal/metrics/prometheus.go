package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instruments are the Prometheus metrics exported by the optimizer and the
// evaluation worker.
type Instruments struct {
	Trials             *prometheus.CounterVec
	BestError          prometheus.Gauge
	ArchiveSize        prometheus.Gauge
	Beta               prometheus.Gauge
	Evaluations        *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
}

// NewInstruments creates the instruments and registers them with reg.
// A nil reg leaves them unregistered.
func NewInstruments(reg prometheus.Registerer) *Instruments {
	ins := &Instruments{
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ffoptimum_trials_total",
			Help: "Annealing trials by outcome",
		}, []string{"algorithm", "outcome"}),
		BestError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffoptimum_best_error",
			Help: "Best scalar error of the latest epoch",
		}),
		ArchiveSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffoptimum_archive_size",
			Help: "Current number of archived solutions",
		}),
		Beta: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffoptimum_beta",
			Help: "Calibrated Metropolis sensitivity",
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ffoptimum_system_evaluations_total",
			Help: "System evaluations by status",
		}, []string{"system", "status"}),
		EvaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ffoptimum_system_evaluation_seconds",
			Help:    "Latency of system evaluations",
			Buckets: prometheus.DefBuckets,
		}, []string{"system"}),
	}
	if reg != nil {
		reg.MustRegister(ins.Trials, ins.BestError, ins.ArchiveSize, ins.Beta,
			ins.Evaluations, ins.EvaluationDuration)
	}
	return ins
}

// ObserveTrial counts one trial.
func (i *Instruments) ObserveTrial(algorithm string, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	i.Trials.WithLabelValues(algorithm, outcome).Inc()
}

// ObserveEvaluation counts one system evaluation and its latency.
func (i *Instruments) ObserveEvaluation(system string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	i.Evaluations.WithLabelValues(system, status).Inc()
	i.EvaluationDuration.WithLabelValues(system).Observe(d.Seconds())
}
