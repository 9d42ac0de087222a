package config

// Default values applied to zero-valued fields.
const (
	DefaultAlgorithm             = "dominance_based_multiobjective_simulated_annealing"
	DefaultEpoch                 = 1
	DefaultInitialTemperature    = 100.0
	DefaultFinalTemperature      = 10.0
	DefaultCoolingRate           = 0.85
	DefaultNumberOfSteps         = 10
	DefaultNumberOfStops         = 1
	DefaultAcceptanceProbability = 0.5
	DefaultArchiveSize           = 50
	DefaultFillSteps             = 5
	DefaultAttainmentMaxIter     = 20
	DefaultErrorFunction         = "rmse"
	DefaultTolerance             = 1e-5
	DefaultOutputDirectory       = "out"
)

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = DefaultOutputDirectory
	}

	a := &cfg.Algorithm
	if a.Name == "" {
		a.Name = DefaultAlgorithm
	}
	if a.Epoch == 0 {
		a.Epoch = DefaultEpoch
	}
	if a.InitialTemperature == 0 {
		a.InitialTemperature = DefaultInitialTemperature
	}
	if a.FinalTemperature == 0 {
		a.FinalTemperature = DefaultFinalTemperature
	}
	if a.CoolingRate == 0 {
		a.CoolingRate = DefaultCoolingRate
	}
	if a.NumberOfSteps == 0 {
		a.NumberOfSteps = DefaultNumberOfSteps
	}
	if a.NumberOfStops == 0 {
		a.NumberOfStops = DefaultNumberOfStops
	}
	if a.AcceptanceProbability == 0 {
		a.AcceptanceProbability = DefaultAcceptanceProbability
	}
	if a.ArchiveSize == 0 {
		a.ArchiveSize = DefaultArchiveSize
	}
	if a.FillSteps == 0 {
		a.FillSteps = DefaultFillSteps
	}
	if a.AttainmentMaxIter == 0 {
		a.AttainmentMaxIter = DefaultAttainmentMaxIter
	}
	if a.AttainmentWorkers == 0 {
		a.AttainmentWorkers = 1
	}

	e := &cfg.Evaluation
	if e.ErrorFunction == "" {
		e.ErrorFunction = DefaultErrorFunction
	}
	if e.Tolerance == 0 {
		e.Tolerance = DefaultTolerance
	}
	if e.Workers == 0 {
		e.Workers = 1
	}

	for si := range cfg.Systems {
		for oi := range cfg.Systems[si].Observables {
			if cfg.Systems[si].Observables[oi].Weight == 0 {
				cfg.Systems[si].Observables[oi].Weight = 1
			}
		}
	}
}
