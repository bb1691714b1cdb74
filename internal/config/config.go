// README: Config loader (viper) with env overrides for HTTP, DB, Redis, model, pricing and ranking settings.
package config

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PricingConfig is the process-wide fare configuration. It is read once when
// the engine is built and never changes afterwards.
type PricingConfig struct {
	BaseFare            float64 `mapstructure:"base_fare"`
	PerKmRate           float64 `mapstructure:"per_km_rate"`
	PerMinRate          float64 `mapstructure:"per_min_rate"`
	BookingFee          float64 `mapstructure:"booking_fee"`
	MinPrice            float64 `mapstructure:"min_price"`
	MaxPrice            float64 `mapstructure:"max_price"`
	SurgeThreshold      float64 `mapstructure:"surge_threshold"`
	SurgeScaling        float64 `mapstructure:"surge_scaling"`
	NightRateMultiplier float64 `mapstructure:"night_rate_multiplier"`
	PeakRateMultiplier  float64 `mapstructure:"peak_rate_multiplier"`
	// SurgePolicy is "logistic" or "linear".
	SurgePolicy   string `mapstructure:"surge_policy"`
	Timezone      string `mapstructure:"timezone"`
	DefaultSupply int    `mapstructure:"default_supply"`
}

// ScoreWeights weighs the ranking signals. They are not normalized.
type ScoreWeights struct {
	Profit          float64 `mapstructure:"profit" json:"profit"`
	ProfitPerMinute float64 `mapstructure:"profit_per_minute" json:"profit_per_minute"`
	ProfitPerMile   float64 `mapstructure:"profit_per_mile" json:"profit_per_mile"`
	PickupTime      float64 `mapstructure:"pickup_time" json:"pickup_time"`
	SurgeFactor     float64 `mapstructure:"surge_factor" json:"surge_factor"`
	OpportunityCost float64 `mapstructure:"opportunity_cost" json:"opportunity_cost"`
}

type RankingConfig struct {
	Weights ScoreWeights `mapstructure:"weights"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type SupplyConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
		// AdminToken guards operator endpoints. Empty leaves them open.
		AdminToken string `mapstructure:"admin_token"`
	} `mapstructure:"http"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	Model struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"model"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Supply  SupplyConfig  `mapstructure:"supply"`
	Log     LogConfig     `mapstructure:"log"`
}

// DefaultPricingConfig returns the calibrated fare table.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseFare:            30,
		PerKmRate:           8.5,
		PerMinRate:          0.8,
		BookingFee:          10,
		MinPrice:            40,
		MaxPrice:            50000,
		SurgeThreshold:      1.4,
		SurgeScaling:        0.4,
		NightRateMultiplier: 1.1,
		PeakRateMultiplier:  1.2,
		SurgePolicy:         "logistic",
		Timezone:            "UTC",
		DefaultSupply:       20,
	}
}

// DefaultScoreWeights favours absolute profit, then time efficiency.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Profit:          0.35,
		ProfitPerMinute: 0.25,
		ProfitPerMile:   0.15,
		PickupTime:      -0.10,
		SurgeFactor:     0.05,
		OpportunityCost: -0.10,
	}
}

// Load reads config.yaml (optional) from the working directory and FLEETFARE_* env vars.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLEETFARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	p := DefaultPricingConfig()
	w := DefaultScoreWeights()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.admin_token", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("model.path", "models/fare_model.json")

	v.SetDefault("pricing.base_fare", p.BaseFare)
	v.SetDefault("pricing.per_km_rate", p.PerKmRate)
	v.SetDefault("pricing.per_min_rate", p.PerMinRate)
	v.SetDefault("pricing.booking_fee", p.BookingFee)
	v.SetDefault("pricing.min_price", p.MinPrice)
	v.SetDefault("pricing.max_price", p.MaxPrice)
	v.SetDefault("pricing.surge_threshold", p.SurgeThreshold)
	v.SetDefault("pricing.surge_scaling", p.SurgeScaling)
	v.SetDefault("pricing.night_rate_multiplier", p.NightRateMultiplier)
	v.SetDefault("pricing.peak_rate_multiplier", p.PeakRateMultiplier)
	v.SetDefault("pricing.surge_policy", p.SurgePolicy)
	v.SetDefault("pricing.timezone", p.Timezone)
	v.SetDefault("pricing.default_supply", p.DefaultSupply)

	v.SetDefault("ranking.weights.profit", w.Profit)
	v.SetDefault("ranking.weights.profit_per_minute", w.ProfitPerMinute)
	v.SetDefault("ranking.weights.profit_per_mile", w.ProfitPerMile)
	v.SetDefault("ranking.weights.pickup_time", w.PickupTime)
	v.SetDefault("ranking.weights.surge_factor", w.SurgeFactor)
	v.SetDefault("ranking.weights.opportunity_cost", w.OpportunityCost)

	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("supply.ttl", 2*time.Minute)
	v.SetDefault("supply.sweep_interval", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the pricing section for values the engine cannot work with.
func (c *Config) Validate() error {
	return c.Pricing.Validate()
}

func (p PricingConfig) Validate() error {
	var errs []string
	if p.MinPrice < 0 {
		errs = append(errs, "min_price must be >= 0")
	}
	if p.MaxPrice < p.MinPrice {
		errs = append(errs, "max_price must be >= min_price")
	}
	if p.SurgeThreshold <= 1 {
		errs = append(errs, "surge_threshold must be > 1")
	}
	switch p.SurgePolicy {
	case "logistic", "linear":
	default:
		errs = append(errs, "surge_policy must be logistic or linear")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		errs = append(errs, "unknown timezone "+p.Timezone)
	}
	if len(errs) > 0 {
		return eris.Errorf("config: invalid pricing: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Location resolves Timezone. Validate has already checked it.
func (p PricingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InitLogger builds the global zap logger.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
