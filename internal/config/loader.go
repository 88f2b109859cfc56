package config

import (
	"fmt"
	"math"
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"chalet/internal/apperror"
)

const envPrefix = "CHALET_"

// Loader resolves a Config from defaults, an optional YAML file, an input
// directory's parameters.json, and environment overrides, in that priority
// order (later sources win).
type Loader struct {
	k          *koanf.Koanf
	configPath string
	envPrefix  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfigPath sets the optional config.yaml path.
func WithConfigPath(path string) Option {
	return func(l *Loader) { l.configPath = path }
}

// WithEnvPrefix overrides the environment-variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// NewLoader builds a Loader with the given options applied.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: envPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the layered configuration. parametersJSONPath may be empty
// when the caller has not yet located an input directory.
func (l *Loader) Load(parametersJSONPath string) (*Config, error) {
	defaults := Defaults()
	flat := map[string]any{
		"app.name":                      defaults.App.Name,
		"app.environment":               defaults.App.Environment,
		"log.level":                     defaults.Log.Level,
		"log.format":                    defaults.Log.Format,
		"log.output_path":               defaults.Log.OutputPath,
		"log.max_size_mb":               defaults.Log.MaxSizeMB,
		"log.max_backups":               defaults.Log.MaxBackups,
		"log.max_age_days":              defaults.Log.MaxAgeDays,
		"parameters.dev_factor":         defaults.Parameters.DevFactor,
		"parameters.min_deviation":      defaults.Parameters.MinDeviation,
		"parameters.cost_budget":        defaults.Parameters.CostBudget,
		"parameters.truck_range":        defaults.Parameters.TruckRange,
		"parameters.safety_margin":      defaults.Parameters.SafetyMargin,
		"parameters.charger_power":      defaults.Parameters.ChargerPower,
		"parameters.battery_capacity":   defaults.Parameters.BatteryCapacity,
		"parameters.min_fuel_time":      defaults.Parameters.MinFuelTime,
		"parameters.max_fuel_time":      defaults.Parameters.MaxFuelTime,
		"parameters.tolerance":          defaults.Parameters.Tolerance,
		"parameters.max_run_time":       defaults.Parameters.MaxRunTimeSec,
		"parameters.num_proc":           defaults.Parameters.NumProc,
		"parameters.max_road_time_once": defaults.Parameters.MaxRoadTimeOnce,
		"parameters.legal_break_time":   defaults.Parameters.LegalBreakTime,
		"cache.enabled":                 defaults.Cache.Enabled,
		"cache.backend":                 defaults.Cache.Backend,
		"cache.ttl":                     defaults.Cache.TTL,
		"database.enabled":              defaults.Database.Enabled,
		"metrics.enabled":               defaults.Metrics.Enabled,
		"metrics.addr":                  defaults.Metrics.Addr,
		"report.enabled":                defaults.Report.Enabled,
	}
	if err := l.k.Load(confmap.Provider(flat, "."), nil); err != nil {
		return nil, apperror.Load("defaults", err)
	}

	if l.configPath != "" {
		if _, statErr := os.Stat(l.configPath); statErr == nil {
			if err := l.k.Load(file.Provider(l.configPath), yaml.Parser()); err != nil {
				return nil, apperror.Load(l.configPath, err)
			}
		}
	}

	if parametersJSONPath != "" {
		if _, statErr := os.Stat(parametersJSONPath); statErr == nil {
			if err := l.k.Load(file.Provider(parametersJSONPath), json.Parser()); err != nil {
				return nil, apperror.Load(parametersJSONPath, err)
			}
		}
		// cost_budget: null in JSON means unbounded (min-cost mode); koanf
		// loads a JSON null as a removed key, so re-seed it explicitly only
		// when the file omitted it entirely.
		if !l.k.Exists("parameters.cost_budget") {
			l.k.Set("parameters.cost_budget", math.Inf(1))
		}
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", envTransform(l.envPrefix)), nil); err != nil {
		return nil, apperror.Load("environment", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, apperror.Load("config-unmarshal", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func envTransform(prefix string) func(string) string {
	return func(s string) string {
		key := s[len(prefix):]
		out := make([]byte, 0, len(key))
		for _, r := range key {
			switch {
			case r == '_':
				out = append(out, '.')
			case r >= 'A' && r <= 'Z':
				out = append(out, byte(r-'A'+'a'))
			default:
				out = append(out, byte(r))
			}
		}
		return string(out)
	}
}

// Validate checks the parameter-error conditions from §7 item 2. It is
// called automatically by Load and is exported so callers that build a
// Config by hand (e.g. in tests) can reuse the same checks.
func Validate(cfg *Config) error {
	p := cfg.Parameters
	switch {
	case p.DevFactor < 1:
		return apperror.Parameter("dev_factor", fmt.Sprintf("dev_factor must be >= 1, got %v", p.DevFactor))
	case p.MinDeviation < 0:
		return apperror.Parameter("min_deviation", "min_deviation must be >= 0")
	case p.CostBudget < 0:
		return apperror.Parameter("cost_budget", "cost_budget must be >= 0")
	case p.TruckRange <= 0:
		return apperror.Parameter("truck_range", "truck_range must be > 0")
	case p.SafetyMargin < 0 || p.SafetyMargin >= p.TruckRange:
		return apperror.Parameter("safety_margin", "safety_margin must be in [0, truck_range)")
	case p.ChargerPower <= 0:
		return apperror.Parameter("charger_power", "charger_power must be > 0")
	case p.BatteryCapacity <= 0:
		return apperror.Parameter("battery_capacity", "battery_capacity must be > 0")
	case p.MinFuelTime < 0:
		return apperror.Parameter("min_fuel_time", "min_fuel_time must be >= 0")
	case p.MaxFuelTime < p.MinFuelTime:
		return apperror.Parameter("max_fuel_time", "max_fuel_time must be >= min_fuel_time")
	case p.Tolerance < 0:
		return apperror.Parameter("tolerance", "tolerance must be >= 0")
	case p.MaxRunTimeSec <= 0:
		return apperror.Parameter("max_run_time", "max_run_time must be > 0")
	case p.MaxRoadTimeOnce <= 0:
		return apperror.Parameter("max_road_time_once", "max_road_time_once must be > 0")
	case p.LegalBreakTime < 0:
		return apperror.Parameter("legal_break_time", "legal_break_time must be >= 0")
	}
	return nil
}

// SafeRange returns truck_range - safety_margin.
func (p ParametersConfig) SafeRange() float64 {
	return p.TruckRange - p.SafetyMargin
}

// MinState returns safety_margin / truck_range, the minimum allowed battery
// state of charge expressed as a fraction of capacity.
func (p ParametersConfig) MinState() float64 {
	return p.SafetyMargin / p.TruckRange
}
