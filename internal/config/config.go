// Package config supplies every threshold, weight, ceiling, interval and
// cost table the analysis engines consume. Defaults match the documented
// analysis parameters; a YAML file and RAILTRACE_* environment variables
// override them. Missing values never fail a run, they fall back to the
// defaults below.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"railtrace/pkg/api"
)

// Config is the externally supplied analysis configuration, injected into
// every engine at construction. No engine reads ambient/global state.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	Quality     QualityConfig     `mapstructure:"quality"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Cost        CostConfig        `mapstructure:"cost"`
	Database    DatabaseConfig    `mapstructure:"database"`
	History     HistoryConfig     `mapstructure:"history"`
	Server      ServerConfig      `mapstructure:"server"`
}

// QualityConfig drives condition classification, risk scoring and pattern
// detection.
type QualityConfig struct {
	// Contamination is the expected share of anomalous components per batch.
	Contamination float64 `mapstructure:"contamination"`

	// Risk sub-score weights (must sum to 1.0).
	AgeWeight     float64 `mapstructure:"age_weight"`
	UsageWeight   float64 `mapstructure:"usage_weight"`
	QualityWeight float64 `mapstructure:"quality_weight"`
	CostWeight    float64 `mapstructure:"cost_weight"`

	// Normalization ceilings for the sub-risks.
	MaxAgeYears     float64 `mapstructure:"max_age_years"`
	MaxScansPerYear float64 `mapstructure:"max_scans_per_year"`
	MaxIssues       float64 `mapstructure:"max_issues"`
	MaxCost         float64 `mapstructure:"max_cost"`

	// Feature risk-flag thresholds.
	CriticalAgeDays  float64 `mapstructure:"critical_age_days"`
	MaxScanFrequency float64 `mapstructure:"max_scan_frequency"`

	// Pattern thresholds (strict > comparisons).
	CriticalFailureRate float64 `mapstructure:"critical_failure_rate"`
	HighRiskFailureRate float64 `mapstructure:"high_risk_failure_rate"`
}

// MaintenanceConfig drives failure prediction, scheduling and lifecycle
// projection.
type MaintenanceConfig struct {
	EmergencyDays int `mapstructure:"emergency_days"`
	UrgentDays    int `mapstructure:"urgent_days"`
	PlannedDays   int `mapstructure:"planned_days"`

	// PlannedBatchLimit caps how many planned items enter one schedule.
	PlannedBatchLimit int `mapstructure:"planned_batch_limit"`

	// Lifespans holds the expected lifespan in days per component type.
	Lifespans map[api.ComponentType]int `mapstructure:"-"`
	// Milestones holds the maintenance interval milestones per type, days.
	Milestones map[api.ComponentType][]int `mapstructure:"-"`
}

// CostConfig carries the base cost and multiplier tables.
type CostConfig struct {
	Currency string `mapstructure:"currency"`

	// BaseCosts per component type.
	BaseCosts map[api.ComponentType]float64 `mapstructure:"-"`

	// Urgency multipliers.
	EmergencyMultiplier float64 `mapstructure:"emergency_multiplier"`
	UrgentMultiplier    float64 `mapstructure:"urgent_multiplier"`
	PlannedMultiplier   float64 `mapstructure:"planned_multiplier"`
	RoutineMultiplier   float64 `mapstructure:"routine_multiplier"`

	// Fixed-ratio optimization opportunity estimates. These are
	// illustrative multipliers, not computed optimizations.
	BatchSavingsRatio     float64 `mapstructure:"batch_savings_ratio"`
	ProactiveSavingsRatio float64 `mapstructure:"proactive_savings_ratio"`
	TotalSavingsRatio     float64 `mapstructure:"total_savings_ratio"`
}

// DatabaseConfig is the component-record source connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// HistoryConfig is the optional ClickHouse run-history sink.
type HistoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ServerConfig configures the HTTP surface and scheduled runs.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	CronSchedule string `mapstructure:"cron_schedule"`
}

// UrgencyMultiplier resolves the cost multiplier for an urgency tier.
func (c CostConfig) UrgencyMultiplier(urgency string) float64 {
	switch urgency {
	case api.UrgencyEmergency:
		return c.EmergencyMultiplier
	case api.UrgencyUrgent:
		return c.UrgentMultiplier
	case api.UrgencyPlanned:
		return c.PlannedMultiplier
	default:
		return c.RoutineMultiplier
	}
}

// BaseCost resolves the base maintenance cost for a component type,
// defaulting to the ERC cost for unknown types.
func (c CostConfig) BaseCost(t api.ComponentType) float64 {
	if cost, ok := c.BaseCosts[t]; ok {
		return cost
	}
	return c.BaseCosts[api.TypeERC]
}

// Load reads configuration from the optional file at path plus RAILTRACE_*
// environment variables, with defaults filling everything else.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RAILTRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Typed tables are keyed by ComponentType; viper's map unmarshalling
	// loses the key type, so they are resolved explicitly.
	cfg.Maintenance.Lifespans = map[api.ComponentType]int{
		api.TypeERC: v.GetInt("maintenance.lifespan_erc"),
		api.TypeRPD: v.GetInt("maintenance.lifespan_rpd"),
		api.TypeLNR: v.GetInt("maintenance.lifespan_lnr"),
	}
	cfg.Maintenance.Milestones = map[api.ComponentType][]int{
		api.TypeERC: intSlice(v, "maintenance.milestones_erc"),
		api.TypeRPD: intSlice(v, "maintenance.milestones_rpd"),
		api.TypeLNR: intSlice(v, "maintenance.milestones_lnr"),
	}
	cfg.Cost.BaseCosts = map[api.ComponentType]float64{
		api.TypeERC: v.GetFloat64("cost.base_erc"),
		api.TypeRPD: v.GetFloat64("cost.base_rpd"),
		api.TypeLNR: v.GetFloat64("cost.base_lnr"),
	}

	return cfg, nil
}

// Default returns the configuration with every value at its default.
func Default() *Config {
	cfg, _ := Load("")
	return cfg
}

func intSlice(v *viper.Viper, key string) []int {
	raw := v.GetIntSlice(key)
	out := make([]int, len(raw))
	copy(out, raw)
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("quality.contamination", 0.1)
	v.SetDefault("quality.age_weight", 0.25)
	v.SetDefault("quality.usage_weight", 0.20)
	v.SetDefault("quality.quality_weight", 0.35)
	v.SetDefault("quality.cost_weight", 0.20)
	v.SetDefault("quality.max_age_years", 6.0)
	v.SetDefault("quality.max_scans_per_year", 500.0)
	v.SetDefault("quality.max_issues", 10.0)
	v.SetDefault("quality.max_cost", 50000.0)
	v.SetDefault("quality.critical_age_days", 2190.0)
	v.SetDefault("quality.max_scan_frequency", 365.0)
	v.SetDefault("quality.critical_failure_rate", 0.15)
	v.SetDefault("quality.high_risk_failure_rate", 0.10)

	v.SetDefault("maintenance.emergency_days", 7)
	v.SetDefault("maintenance.urgent_days", 30)
	v.SetDefault("maintenance.planned_days", 90)
	v.SetDefault("maintenance.planned_batch_limit", 20)
	v.SetDefault("maintenance.lifespan_erc", 2190)
	v.SetDefault("maintenance.lifespan_rpd", 1825)
	v.SetDefault("maintenance.lifespan_lnr", 2555)
	v.SetDefault("maintenance.milestones_erc", []int{730, 1460, 2190})
	v.SetDefault("maintenance.milestones_rpd", []int{610, 1220, 1825})
	v.SetDefault("maintenance.milestones_lnr", []int{850, 1700, 2555})

	v.SetDefault("cost.currency", "INR")
	v.SetDefault("cost.base_erc", 15000.0)
	v.SetDefault("cost.base_rpd", 12000.0)
	v.SetDefault("cost.base_lnr", 18000.0)
	v.SetDefault("cost.emergency_multiplier", 2.5)
	v.SetDefault("cost.urgent_multiplier", 1.8)
	v.SetDefault("cost.planned_multiplier", 1.2)
	v.SetDefault("cost.routine_multiplier", 1.0)
	v.SetDefault("cost.batch_savings_ratio", 0.15)
	v.SetDefault("cost.proactive_savings_ratio", 0.60)
	v.SetDefault("cost.total_savings_ratio", 0.25)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "railtrace")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "railtrace")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.host", "localhost")
	v.SetDefault("history.port", 9000)
	v.SetDefault("history.database", "railtrace")
	v.SetDefault("history.user", "default")
	v.SetDefault("history.password", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cron_schedule", "")
}
