// Package config resolves chalet's layered configuration: compiled-in
// defaults, an optional config.yaml, the input directory's parameters.json,
// and CHALET_-prefixed environment overrides.
package config

import (
	"math"
	"time"
)

// Config is the fully resolved configuration for one run.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Parameters ParametersConfig `koanf:"parameters"`
	Cache      CacheConfig      `koanf:"cache"`
	Database   DatabaseConfig   `koanf:"database"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Report     ReportConfig     `koanf:"report"`
}

// AppConfig carries top-level run metadata.
type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
}

// LogConfig mirrors logging.Config with koanf tags for layered resolution.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	OutputPath string `koanf:"output_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// ParametersConfig holds every tunable from §3 of the domain model plus the
// two regulatory constants, all overridable via parameters.json or env.
type ParametersConfig struct {
	DevFactor        float64 `koanf:"dev_factor"`
	MinDeviation     float64 `koanf:"min_deviation"`
	CostBudget       float64 `koanf:"cost_budget"` // +Inf => min-cost mode
	TruckRange       float64 `koanf:"truck_range"`
	SafetyMargin     float64 `koanf:"safety_margin"`
	ChargerPower     float64 `koanf:"charger_power"`
	BatteryCapacity  float64 `koanf:"battery_capacity"`
	MinFuelTime      float64 `koanf:"min_fuel_time"`
	MaxFuelTime      float64 `koanf:"max_fuel_time"`
	Tolerance        float64 `koanf:"tolerance"`
	MaxRunTimeSec    float64 `koanf:"max_run_time"`
	NumProc          int     `koanf:"num_proc"`
	MaxRoadTimeOnce  float64 `koanf:"max_road_time_once"`
	LegalBreakTime   float64 `koanf:"legal_break_time"`
}

// CacheConfig controls the optional run-result cache (D1).
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Backend  string        `koanf:"backend"` // memory, redis
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl"`
}

// DatabaseConfig controls the optional run history store (D2).
type DatabaseConfig struct {
	Enabled bool   `koanf:"enabled"`
	DSN     string `koanf:"dsn"`
}

// MetricsConfig controls the optional Prometheus endpoint (D4).
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// ReportConfig controls the optional XLSX/PDF report generation (D3).
type ReportConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Defaults returns the compiled-in baseline matching §6's parameter table.
func Defaults() Config {
	return Config{
		App: AppConfig{Name: "chalet", Environment: "local"},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			OutputPath: "stdout",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Parameters: ParametersConfig{
			DevFactor:       1.1,
			MinDeviation:    30,
			CostBudget:      math.Inf(1),
			TruckRange:      300,
			SafetyMargin:    50,
			ChargerPower:    360,
			BatteryCapacity: 540,
			MinFuelTime:     0,
			MaxFuelTime:     45,
			Tolerance:       0,
			MaxRunTimeSec:   3600,
			NumProc:         1,
			MaxRoadTimeOnce: 270,
			LegalBreakTime:  45,
		},
		Cache:    CacheConfig{Enabled: false, Backend: "memory", TTL: 10 * time.Minute},
		Database: DatabaseConfig{Enabled: false},
		Metrics:  MetricsConfig{Enabled: false, Addr: ":9108"},
		Report:   ReportConfig{Enabled: false},
	}
}
