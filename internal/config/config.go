// Package config loads secretd's YAML configuration file: the master
// key, audit log path, persistence backend selection, and the
// scheduler/session/envelope tuning blocks.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/systmms/secretd/internal/dserr"
)

// Config is secretd's top-level runtime configuration.
type Config struct {
	MasterKey    string          `yaml:"master_key"`
	AuditLogPath string          `yaml:"audit_log_path"`
	Store        StoreConfig     `yaml:"store"`
	Scheduler    SchedulerConfig `yaml:"scheduler"`
	Session      SessionConfig   `yaml:"session"`
	Envelope     EnvelopeConfig  `yaml:"envelope"`
}

// StoreConfig selects and configures one of the three persistence
// backends. Only the fields relevant to Backend need be set; Load
// validates that the required ones are present for the selected type.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "file", "object", or "relational"

	// file
	StorePath string `yaml:"store_path,omitempty"`

	// object
	Provider  string `yaml:"provider,omitempty"` // "s3", "gcs", or "azureblob"
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	ProjectID string `yaml:"project_id,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// relational
	Dialect          string `yaml:"dialect,omitempty"` // "postgres" or "mysql"
	ConnectionString string `yaml:"connection_string,omitempty"`
	TableName        string `yaml:"table_name,omitempty"`
}

// SchedulerConfig tunes the automatic rotation scheduler.
type SchedulerConfig struct {
	CheckIntervalMs        int `yaml:"check_interval_ms"`
	MaxConcurrentRotations int `yaml:"max_concurrent_rotations"`
	DefaultMaxRetries      int `yaml:"default_max_retries"`
}

// SessionConfig tunes the authorization kernel's session manager.
type SessionConfig struct {
	SessionTimeoutMs int    `yaml:"session_timeout_ms"`
	JWTSecret        string `yaml:"jwt_secret"`
}

// EnvelopeConfig tunes envelope key generation.
type EnvelopeConfig struct {
	KeyRotationDays int    `yaml:"key_rotation_days"`
	KeySize         int    `yaml:"key_size"`
	Algorithm       string `yaml:"algorithm"`
}

// Load reads and parses the configuration file at path, then validates
// it. A missing file, invalid YAML, or a validation failure returns a
// dserr.Configuration error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserr.New("config.Load", dserr.Configuration, "configuration file not found: "+path)
		}
		return nil, dserr.Wrap("config.Load", dserr.Configuration, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, dserr.Wrap("config.Load", dserr.Configuration, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.CheckIntervalMs <= 0 {
		c.Scheduler.CheckIntervalMs = 60_000
	}
	if c.Scheduler.MaxConcurrentRotations <= 0 {
		c.Scheduler.MaxConcurrentRotations = 4
	}
	if c.Scheduler.DefaultMaxRetries <= 0 {
		c.Scheduler.DefaultMaxRetries = 5
	}
	if c.Session.SessionTimeoutMs <= 0 {
		c.Session.SessionTimeoutMs = 3_600_000
	}
	if c.Envelope.KeyRotationDays <= 0 {
		c.Envelope.KeyRotationDays = 90
	}
	if c.Envelope.KeySize <= 0 {
		c.Envelope.KeySize = 32
	}
	if c.Envelope.Algorithm == "" {
		c.Envelope.Algorithm = "AES-256-GCM"
	}
	if c.Store.TableName == "" {
		c.Store.TableName = "secrets"
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "secrets/"
	}
}

// Validate checks that the fields required by the selected store
// backend are present, returning dserr.Configuration on the first
// problem found.
func (c *Config) Validate() error {
	if c.MasterKey == "" {
		return dserr.New("config.Validate", dserr.Configuration, "master_key is required")
	}
	if c.AuditLogPath == "" {
		return dserr.New("config.Validate", dserr.Configuration, "audit_log_path is required")
	}

	switch c.Store.Backend {
	case "file":
		if c.Store.StorePath == "" {
			return dserr.New("config.Validate", dserr.Configuration, "store.store_path is required for the file backend")
		}
	case "object":
		if c.Store.Provider != "s3" && c.Store.Provider != "gcs" && c.Store.Provider != "azureblob" {
			return dserr.New("config.Validate", dserr.Configuration, "store.provider must be one of: s3, gcs, azureblob")
		}
		if c.Store.Bucket == "" {
			return dserr.New("config.Validate", dserr.Configuration, "store.bucket is required for the object backend")
		}
	case "relational":
		if c.Store.Dialect != "postgres" && c.Store.Dialect != "mysql" {
			return dserr.New("config.Validate", dserr.Configuration, "store.dialect must be postgres or mysql")
		}
		if c.Store.ConnectionString == "" {
			return dserr.New("config.Validate", dserr.Configuration, "store.connection_string is required for the relational backend")
		}
	default:
		return dserr.New("config.Validate", dserr.Configuration, "store.backend must be one of: file, object, relational")
	}

	return nil
}
