package config

import (
	"alcyxob/marathon-tracker/internal/domain"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted in database.backend.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Training  TrainingConfig  `mapstructure:"training"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Plans     []PlanConfig    `mapstructure:"plans"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	Backend string `mapstructure:"backend"`
	URI     string `mapstructure:"uri"`
	Name    string `mapstructure:"name"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	JSON     bool   `mapstructure:"json"`
	File     string `mapstructure:"file"`
	ToStdout bool   `mapstructure:"to_stdout"`
}

// AdminConfig is the account seeded on startup when it does not exist yet.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

type TrainingConfig struct {
	WorkoutsPerWeek int `mapstructure:"workouts_per_week"`
	FallbackWeeks   int `mapstructure:"fallback_weeks"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// PlanConfig is one entry of the plan catalog. TargetDate is RFC 3339 or
// "2006-01-02T15:04:05" (local time).
type PlanConfig struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	TargetDate string `mapstructure:"target_date"`
}

// DefaultPlans is used when the config does not declare any plan.
var DefaultPlans = []PlanConfig{
	{ID: "bcn", Name: "BARCELONA", TargetDate: "2026-03-15T09:00:00"},
	{ID: "mad", Name: "MADRID", TargetDate: "2026-04-26T09:00:00"},
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if len(config.Plans) == 0 {
		config.Plans = DefaultPlans
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.backend", BackendMemory)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "marathon_tracker")
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.to_stdout", true)
	v.SetDefault("admin.name", "admin")
	v.SetDefault("training.workouts_per_week", domain.WorkoutsPerWeek)
	v.SetDefault("training.fallback_weeks", 12)
	v.SetDefault("ratelimit.requests_per_second", 5)
	v.SetDefault("ratelimit.burst", 30)
	// Declared so AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	switch c.Database.Backend {
	case BackendMemory, BackendMongo, BackendPostgres:
	default:
		return fmt.Errorf("unknown database backend: %q", c.Database.Backend)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.Training.WorkoutsPerWeek < 1 {
		return errors.New("training.workouts_per_week must be positive")
	}
	if c.Training.FallbackWeeks < 1 {
		return errors.New("training.fallback_weeks must be positive")
	}
	if c.S3.Enabled && c.S3.BucketName == "" {
		return errors.New("s3.bucket_name must be set when s3 is enabled")
	}
	_, err := c.Catalog()
	return err
}

// Catalog converts the configured plans into the domain plan table.
func (c Config) Catalog() (domain.Catalog, error) {
	plans := c.Plans
	if len(plans) == 0 {
		plans = DefaultPlans
	}
	catalog := make(domain.Catalog, 0, len(plans))
	seen := make(map[string]bool, len(plans))
	for _, p := range plans {
		if p.ID == "" {
			return nil, errors.New("plan id must be set")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate plan id: %s", p.ID)
		}
		seen[p.ID] = true

		target, err := parseTargetDate(p.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", p.ID, err)
		}
		catalog = append(catalog, domain.TrainingPlan{ID: p.ID, Name: p.Name, TargetDate: target})
	}
	return catalog, nil
}

func parseTargetDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target date %q", s)
	}
	return t, nil
}
