package config

import (
	"os"
	"strconv"
	"time"

	"amaa/domain/effect"
	"amaa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Data        DataConfig
	Session     SessionConfig
	Calibration effect.Calibration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds dataset settings
type DataConfig struct {
	DemoFile       string  // path of the bundled demo CSV
	BudgetHeadroom float64 // multiplier on mean spend for the global limit default
	MaxUploadBytes int64
}

// SessionConfig holds session registry settings
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			DemoFile:       getEnvOrDefault("DEMO_DATA_FILE", "amaa_demo_data.csv"),
			BudgetHeadroom: getEnvFloatOrDefault("BUDGET_HEADROOM", 1.2),
			MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		},
		Session: SessionConfig{
			TTL:             getEnvDurationOrDefault("SESSION_TTL", time.Hour),
			CleanupInterval: getEnvDurationOrDefault("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Calibration: loadCalibration(),
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// loadCalibration starts from the demo defaults and applies env overrides.
func loadCalibration() effect.Calibration {
	cal := effect.DefaultCalibration()
	cal.TrendMin = getEnvFloatOrDefault("EFFECT_TREND_MIN", cal.TrendMin)
	cal.TrendMax = getEnvFloatOrDefault("EFFECT_TREND_MAX", cal.TrendMax)
	cal.ContributionFloor = getEnvFloatOrDefault("EFFECT_CONTRIBUTION_FLOOR", cal.ContributionFloor)
	cal.ContributionCeil = getEnvFloatOrDefault("EFFECT_CONTRIBUTION_CEIL", cal.ContributionCeil)
	cal.InfluenceMin = getEnvFloatOrDefault("EFFECT_INFLUENCE_MIN", cal.InfluenceMin)
	cal.InfluenceMax = getEnvFloatOrDefault("EFFECT_INFLUENCE_MAX", cal.InfluenceMax)
	cal.ROINoiseMin = getEnvFloatOrDefault("EFFECT_ROI_NOISE_MIN", cal.ROINoiseMin)
	cal.ROINoiseMax = getEnvFloatOrDefault("EFFECT_ROI_NOISE_MAX", cal.ROINoiseMax)
	return cal
}

func validate(c *Config) error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if c.Data.BudgetHeadroom <= 0 {
		return errors.ConfigInvalid("BUDGET_HEADROOM must be positive")
	}
	if c.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	cal := c.Calibration
	if cal.TrendMin >= cal.TrendMax {
		return errors.ConfigInvalid("effect trend range is inverted")
	}
	if cal.ContributionFloor > cal.ContributionCeil {
		return errors.ConfigInvalid("effect contribution clamp is inverted")
	}
	if cal.InfluenceMin > cal.InfluenceMax || cal.ROINoiseMin > cal.ROINoiseMax {
		return errors.ConfigInvalid("effect noise range is inverted")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
