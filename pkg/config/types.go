package config

// Config is the top-level optimizer configuration.
type Config struct {
	LogLevel        string      `yaml:"log_level"`
	LogFormat       string      `yaml:"log_format"`
	OutputDirectory string      `yaml:"output_directory"`
	Seed            int64       `yaml:"seed"`
	Algorithm       Algorithm   `yaml:"algorithm"`
	Evaluation      Evaluation  `yaml:"evaluation"`
	Parameters      []Parameter `yaml:"parameters"`
	Systems         []System    `yaml:"systems"`
}

// Algorithm holds the annealing settings shared by both optimizer variants.
type Algorithm struct {
	Name                  string    `yaml:"name"`
	Epoch                 int       `yaml:"epoch"`
	InitialTemperature    float64   `yaml:"initial_temperature"`
	FinalTemperature      float64   `yaml:"final_temperature"`
	CoolingRate           float64   `yaml:"cooling_rate"`
	NumberOfSteps         int       `yaml:"number_of_steps"`
	NumberOfStops         int       `yaml:"number_of_stops"` // consecutive idle rungs before an epoch stalls
	AcceptanceProbability float64   `yaml:"acceptance_probability"`
	Threshold             float64   `yaml:"threshold"`
	ArchiveSize           int       `yaml:"archive_size"`
	FillSteps             int       `yaml:"fill_steps"`
	AttainmentMaxIter     int       `yaml:"attainment_max_iter"`
	AttainmentWorkers     int       `yaml:"attainment_workers"`
	Reduction             Reduction `yaml:"reduction"`
}

// Reduction configures objective-count reduction after the fill phase.
// Any mode other than LPCA, the empty one included, runs plain PCA.
type Reduction struct {
	Mode   string `yaml:"mode"` // "", PCA or LPCA
	Repeat int    `yaml:"repeat"`
}

// Enabled reports whether a reduction pass should run.
func (r Reduction) Enabled() bool {
	return r.Repeat > 0
}

// Evaluation configures how parameter sets are scored.
type Evaluation struct {
	ErrorFunction string   `yaml:"error_function"`
	Tolerance     float64  `yaml:"tolerance"`
	Workers       int      `yaml:"workers"`
	Remote        []string `yaml:"remote,omitempty"`
}

// Parameter is one optimizable force-field parameter.
type Parameter struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Step  float64 `yaml:"step"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// System groups observables that are evaluated together.
type System struct {
	Name        string       `yaml:"name"`
	Observables []Observable `yaml:"observables"`
}

// Observable is a calculated quantity compared against reference data.
// Points are the sample coordinates bound to x in the expression; an
// observable without points yields a single value.
type Observable struct {
	Name       string    `yaml:"name"`
	Expression string    `yaml:"expression"`
	Points     []float64 `yaml:"points,omitempty"`
	Reference  []float64 `yaml:"reference"`
	Weight     float64   `yaml:"weight,omitempty"`
}
