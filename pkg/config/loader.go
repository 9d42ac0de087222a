package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	if err := validateAlgorithm(&cfg.Algorithm); err != nil {
		return fmt.Errorf("algorithm validation failed: %w", err)
	}
	if err := validateEvaluation(&cfg.Evaluation); err != nil {
		return fmt.Errorf("evaluation validation failed: %w", err)
	}
	if err := validateParameters(cfg.Parameters); err != nil {
		return fmt.Errorf("parameters validation failed: %w", err)
	}
	if err := validateSystems(cfg.Systems); err != nil {
		return fmt.Errorf("systems validation failed: %w", err)
	}

	return nil
}

// validateAlgorithm validates the annealing settings
func validateAlgorithm(a *Algorithm) error {
	if !strings.Contains(a.Name, "simulated_annealing") {
		return fmt.Errorf("unknown algorithm name: %s", a.Name)
	}
	if a.Epoch < 1 {
		return fmt.Errorf("epoch must be at least 1, got %d", a.Epoch)
	}
	if a.FinalTemperature <= 0 {
		return fmt.Errorf("final_temperature must be positive, got %f", a.FinalTemperature)
	}
	if a.InitialTemperature <= a.FinalTemperature {
		return fmt.Errorf("initial_temperature %f must exceed final_temperature %f",
			a.InitialTemperature, a.FinalTemperature)
	}
	if a.CoolingRate <= 0 || a.CoolingRate >= 1 {
		return fmt.Errorf("cooling_rate must be in (0, 1), got %f", a.CoolingRate)
	}
	if a.NumberOfSteps < 1 {
		return fmt.Errorf("number_of_steps must be positive, got %d", a.NumberOfSteps)
	}
	if a.NumberOfStops < 0 {
		return fmt.Errorf("number_of_stops cannot be negative, got %d", a.NumberOfStops)
	}
	if a.AcceptanceProbability <= 0 || a.AcceptanceProbability >= 1 {
		return fmt.Errorf("acceptance_probability must be in (0, 1), got %f", a.AcceptanceProbability)
	}
	if a.ArchiveSize < 1 {
		return fmt.Errorf("archive_size must be positive, got %d", a.ArchiveSize)
	}
	if a.FillSteps < 0 {
		return fmt.Errorf("fill_steps cannot be negative, got %d", a.FillSteps)
	}
	if a.AttainmentMaxIter < 1 {
		return fmt.Errorf("attainment_max_iter must be positive, got %d", a.AttainmentMaxIter)
	}
	if a.AttainmentWorkers < 1 {
		return fmt.Errorf("attainment_workers must be positive, got %d", a.AttainmentWorkers)
	}
	switch a.Reduction.Mode {
	case "", "PCA", "LPCA":
	default:
		return fmt.Errorf("invalid reduction mode: %s (must be PCA or LPCA)", a.Reduction.Mode)
	}
	if a.Reduction.Repeat < 0 {
		return fmt.Errorf("reduction repeat cannot be negative, got %d", a.Reduction.Repeat)
	}
	return nil
}

// validateEvaluation validates the scoring settings
func validateEvaluation(e *Evaluation) error {
	validErrorFunctions := map[string]bool{
		"mae":   true,
		"mase":  true,
		"rmse":  true,
		"nrmse": true,
	}
	if !validErrorFunctions[e.ErrorFunction] {
		return fmt.Errorf("invalid error_function: %s (must be mae, mase, rmse, or nrmse)", e.ErrorFunction)
	}
	if e.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", e.Tolerance)
	}
	if e.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", e.Workers)
	}
	for i, addr := range e.Remote {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("remote worker %d: address cannot be empty", i)
		}
	}
	return nil
}

// validateParameters validates the force-field parameters
func validateParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be defined")
	}
	names := make(map[string]bool)
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate parameter name: %s", p.Name)
		}
		names[p.Name] = true
		if p.Step < 0 {
			return fmt.Errorf("parameter %s: step cannot be negative", p.Name)
		}
		if p.Lower > p.Upper {
			return fmt.Errorf("parameter %s: lower %f exceeds upper %f", p.Name, p.Lower, p.Upper)
		}
		if p.Value < p.Lower || p.Value > p.Upper {
			return fmt.Errorf("parameter %s: value %f outside [%f, %f]", p.Name, p.Value, p.Lower, p.Upper)
		}
	}
	return nil
}

// validateSystems validates the training systems and their observables
func validateSystems(systems []System) error {
	if len(systems) == 0 {
		return fmt.Errorf("at least one system must be defined")
	}
	systemNames := make(map[string]bool)
	for _, s := range systems {
		if s.Name == "" {
			return fmt.Errorf("system name cannot be empty")
		}
		if systemNames[s.Name] {
			return fmt.Errorf("duplicate system name: %s", s.Name)
		}
		systemNames[s.Name] = true
		if len(s.Observables) == 0 {
			return fmt.Errorf("system %s: at least one observable must be defined", s.Name)
		}

		observableNames := make(map[string]bool)
		for _, o := range s.Observables {
			if o.Name == "" {
				return fmt.Errorf("system %s: observable name cannot be empty", s.Name)
			}
			if observableNames[o.Name] {
				return fmt.Errorf("system %s: duplicate observable name: %s", s.Name, o.Name)
			}
			observableNames[o.Name] = true
			if strings.TrimSpace(o.Expression) == "" {
				return fmt.Errorf("system %s: observable %s: expression cannot be empty", s.Name, o.Name)
			}
			want := max(1, len(o.Points))
			if len(o.Reference) != want {
				return fmt.Errorf("system %s: observable %s: expected %d reference values, got %d",
					s.Name, o.Name, want, len(o.Reference))
			}
			if o.Weight < 0 {
				return fmt.Errorf("system %s: observable %s: weight cannot be negative", s.Name, o.Name)
			}
		}
	}
	return nil
}
