package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the reminder worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are set.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// CacheTTL is CacheTTLSeconds as a duration.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ScheduleConfig controls how often the timetable is rebuilt and resolved.
type ScheduleConfig struct {
	Timezone               string        `yaml:"timezone"`
	RefreshIntervalSeconds int           `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `yaml:"-"`
	// Minutes before a class starts that subscribers are reminded; 0 disables reminders.
	ReminderLeadMinutes int `yaml:"reminder_lead_minutes"`
}

// Location loads the configured timezone, UTC when unset.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres | sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Schedule.RefreshIntervalSeconds <= 0 {
		cfg.Schedule.RefreshIntervalSeconds = 60
	}
	cfg.Schedule.RefreshInterval = time.Duration(cfg.Schedule.RefreshIntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = cfg.WorkerPool.Size
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks the settings defaults cannot repair.
func (cfg *Config) Validate() error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn must be set")
	}
	if cfg.Schedule.ReminderLeadMinutes < 0 {
		return fmt.Errorf("schedule.reminder_lead_minutes must not be negative")
	}
	if _, err := cfg.Schedule.Location(); err != nil {
		return err
	}
	return nil
}
