package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the service settings, loaded from environment variables
// (optionally via a .env file in the working directory).
type Config struct {
	DBSource string `mapstructure:"DB_SOURCE"`
	Port     string `mapstructure:"SERVER_PORT"`
	Env      string `mapstructure:"ENVIRONMENT"`
}

func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	_ = viper.BindEnv("DB_SOURCE")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("ENVIRONMENT")

	// The .env file is optional; environment variables alone are fine.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.DBSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}
	return &cfg, nil
}
