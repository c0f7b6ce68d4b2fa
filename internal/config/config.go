package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Backfill BackfillConfig `yaml:"backfill" mapstructure:"backfill"`
	Ranker   RankerConfig   `yaml:"ranker" mapstructure:"ranker"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the durable blob store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BackfillConfig configures orchestrator throttling and batch fan-out.
type BackfillConfig struct {
	TTLHours       int     `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	RetentionYears int     `yaml:"retention_years" mapstructure:"retention_years"`
	MaxConcurrent  int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// RankerConfig holds the relevance scoring bonuses. Higher total = more
// relevant candidate.
type RankerConfig struct {
	EarningsTagBonus     float64 `yaml:"earnings_tag_bonus" mapstructure:"earnings_tag_bonus"`
	HighImpactBonus      float64 `yaml:"high_impact_bonus" mapstructure:"high_impact_bonus"`
	ConfirmedBonus       float64 `yaml:"confirmed_bonus" mapstructure:"confirmed_bonus"`
	QuarterInTitleBonus  float64 `yaml:"quarter_in_title_bonus" mapstructure:"quarter_in_title_bonus"`
	QuarterInBodyBonus   float64 `yaml:"quarter_in_body_bonus" mapstructure:"quarter_in_body_bonus"`
	VerdictKeywordBonus  float64 `yaml:"verdict_keyword_bonus" mapstructure:"verdict_keyword_bonus"`
	EPSKeywordBonus      float64 `yaml:"eps_keyword_bonus" mapstructure:"eps_keyword_bonus"`
	RevenueKeywordBonus  float64 `yaml:"revenue_keyword_bonus" mapstructure:"revenue_keyword_bonus"`
	RecencyWeekBonus     float64 `yaml:"recency_week_bonus" mapstructure:"recency_week_bonus"`
	RecencyMonthBonus    float64 `yaml:"recency_month_bonus" mapstructure:"recency_month_bonus"`
	RecencyQuarterBonus  float64 `yaml:"recency_quarter_bonus" mapstructure:"recency_quarter_bonus"`
	WindowMonths         int     `yaml:"window_months" mapstructure:"window_months"`
}

// ExtractConfig holds the extractor's confidence-composition tunables.
// All bonuses are additive and the total is capped at ConfidenceCap, so
// more corroborating signals never lower confidence.
type ExtractConfig struct {
	BaseConfidence     float64 `yaml:"base_confidence" mapstructure:"base_confidence"`
	PerPatternBonus    float64 `yaml:"per_pattern_bonus" mapstructure:"per_pattern_bonus"`
	ClassificationCap  float64 `yaml:"classification_cap" mapstructure:"classification_cap"`
	EPSBonus           float64 `yaml:"eps_bonus" mapstructure:"eps_bonus"`
	RevenueBonus       float64 `yaml:"revenue_bonus" mapstructure:"revenue_bonus"`
	EarningsTagBonus   float64 `yaml:"earnings_tag_bonus" mapstructure:"earnings_tag_bonus"`
	ConfirmedBonus     float64 `yaml:"confirmed_bonus" mapstructure:"confirmed_bonus"`
	ConfidenceCap      float64 `yaml:"confidence_cap" mapstructure:"confidence_cap"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EARNINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "earnings.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("backfill.ttl_hours", 24)
	v.SetDefault("backfill.retention_years", 6)
	v.SetDefault("backfill.max_concurrent", 8)
	v.SetDefault("backfill.rate_per_second", 0)
	v.SetDefault("ranker.earnings_tag_bonus", 50)
	v.SetDefault("ranker.high_impact_bonus", 30)
	v.SetDefault("ranker.confirmed_bonus", 20)
	v.SetDefault("ranker.quarter_in_title_bonus", 40)
	v.SetDefault("ranker.quarter_in_body_bonus", 20)
	v.SetDefault("ranker.verdict_keyword_bonus", 25)
	v.SetDefault("ranker.eps_keyword_bonus", 15)
	v.SetDefault("ranker.revenue_keyword_bonus", 10)
	v.SetDefault("ranker.recency_week_bonus", 20)
	v.SetDefault("ranker.recency_month_bonus", 10)
	v.SetDefault("ranker.recency_quarter_bonus", 5)
	v.SetDefault("ranker.window_months", 18)
	v.SetDefault("extract.base_confidence", 0.5)
	v.SetDefault("extract.per_pattern_bonus", 0.05)
	v.SetDefault("extract.classification_cap", 0.7)
	v.SetDefault("extract.eps_bonus", 0.2)
	v.SetDefault("extract.revenue_bonus", 0.15)
	v.SetDefault("extract.earnings_tag_bonus", 0.05)
	v.SetDefault("extract.confirmed_bonus", 0.05)
	v.SetDefault("extract.confidence_cap", 0.95)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
