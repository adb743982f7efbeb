package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Workout   WorkoutConfig   `yaml:"workout"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (default) or "postgres"

	// SQLite
	Path string `yaml:"path"`

	// Postgres
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type WorkoutConfig struct {
	// VolumePolicy selects which sets count toward total volume at
	// finalization: "all" (every logged set) or "completed" (only sets
	// marked complete). Defaults to "all".
	VolumePolicy string `yaml:"volume_policy"`

	// DefaultRestSeconds is used when an exercise's rest field fails to parse.
	DefaultRestSeconds int `yaml:"default_rest_seconds"`
}

// DSN returns a connection string understood by the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
	}
	return "sqlite://" + d.Path
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITTRACK_ and underscore-separated paths:
//
//	FITTRACK_SERVER_HOST, FITTRACK_SERVER_PORT,
//	FITTRACK_DB_DRIVER, FITTRACK_DB_PATH,
//	FITTRACK_DB_HOST, FITTRACK_DB_PORT, FITTRACK_DB_NAME,
//	FITTRACK_DB_USER, FITTRACK_DB_PASSWORD, FITTRACK_DB_SSLMODE,
//	FITTRACK_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITTRACK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITTRACK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITTRACK_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("FITTRACK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FITTRACK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FITTRACK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FITTRACK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FITTRACK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FITTRACK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FITTRACK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("FITTRACK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "fittrack.db"
	}
	if cfg.Workout.VolumePolicy == "" {
		cfg.Workout.VolumePolicy = "all"
	}
	if cfg.Workout.DefaultRestSeconds == 0 {
		cfg.Workout.DefaultRestSeconds = 60
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required for postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Workout.VolumePolicy {
	case "all", "completed":
	default:
		return fmt.Errorf("workout.volume_policy must be all or completed, got %q", c.Workout.VolumePolicy)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
