package anneal

import (
	"math"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// calibrationFloor is the sensitivity below which beta counts as unset.
const calibrationFloor = 1e-9

// Acceptance is the Metropolis criterion with a self-calibrating
// sensitivity beta. Until beta is calibrated, worsening moves are accepted
// with the configured initial probability.
type Acceptance struct {
	initialProbability float64
	initialTemperature float64
	beta               float64
	deltas             []float64
	rng                *utils.RandSource
}

// NewAcceptance creates an uncalibrated acceptance model.
func NewAcceptance(initialProbability, initialTemperature float64, rng *utils.RandSource) *Acceptance {
	return &Acceptance{
		initialProbability: initialProbability,
		initialTemperature: initialTemperature,
		rng:                rng,
	}
}

// Beta returns the current sensitivity, 0 when unset.
func (a *Acceptance) Beta() float64 { return a.beta }

// NeedsCalibration reports whether beta is unset or below 1e-9.
func (a *Acceptance) NeedsCalibration() bool { return a.beta < calibrationFloor }

// Probability returns the probability of accepting an energy increase
// delta at temperature.
func (a *Acceptance) Probability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1
	}
	if a.NeedsCalibration() {
		return a.initialProbability
	}
	return math.Min(math.Exp(-delta/(a.beta*temperature)), 1)
}

// Accept draws the Metropolis decision for delta at temperature.
func (a *Acceptance) Accept(delta, temperature float64) bool {
	if delta <= 0 {
		return true
	}
	return a.rng.BernoulliBool(a.Probability(delta, temperature))
}

// Record keeps delta for calibration. Deltas are recorded only while beta
// is uncalibrated and are never discarded. Non-finite deltas are ignored.
func (a *Acceptance) Record(delta float64) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	if a.NeedsCalibration() {
		a.deltas = append(a.deltas, delta)
	}
}

// Calibrate sets beta so that the mean recorded delta over trials is
// accepted at the initial temperature with the initial probability:
// beta = -mean / T0 / ln(p0). It does nothing without trials and reports
// whether beta is now calibrated. A non-finite result leaves beta unset.
func (a *Acceptance) Calibrate(trials int) bool {
	if trials == 0 {
		return !a.NeedsCalibration()
	}
	mean := utils.Sum(a.deltas) / float64(trials)
	beta := -mean / a.initialTemperature / math.Log(a.initialProbability)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		beta = 0
	}
	a.beta = beta
	return !a.NeedsCalibration()
}
