package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	PolicyEndDate = "end_date"
	PolicyOverlap = "overlap"
)

type Config struct {
	ServerAddress string
	Environment   string
	LogLevel      string
	LeasePolicy   string
	Database      DatabaseConfig
	Migration     MigrationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Params   string
}

type MigrationConfig struct {
	Dir string
}

// LoadConfig reads settings from the environment, layered over an optional
// .env file in the working directory.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LEASE_POLICY", PolicyEndDate)
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_PARAMS", "parseTime=true")
	v.SetDefault("MIGRATION_DIR", "migrations")
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		Environment:   v.GetString("ENVIRONMENT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LeasePolicy:   v.GetString("LEASE_POLICY"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Params:   v.GetString("DB_PARAMS"),
		},
		Migration: MigrationConfig{
			Dir: v.GetString("MIGRATION_DIR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LeasePolicy {
	case PolicyEndDate, PolicyOverlap:
	default:
		return fmt.Errorf("invalid LEASE_POLICY %q: must be %s or %s", c.LeasePolicy, PolicyEndDate, PolicyOverlap)
	}
	if c.Database.Name == "" {
		return errors.New("DB_NAME is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}

// GetMigrationDBURL returns the database URL for migrations
func (c *Config) GetMigrationDBURL() string {
	return "mysql://" + c.GetDSN()
}
