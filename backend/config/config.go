package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Store       StoreConfig       `yaml:"store"`
	Session     SessionConfig     `yaml:"session"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Minio       MinioConfig       `yaml:"minio"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Digest      DigestConfig      `yaml:"digest"`
	Departments []string          `yaml:"departments"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	SeedFile string `yaml:"seed_file"`
}

type SessionConfig struct {
	IdleMinutes int    `yaml:"idle_minutes"`
	SweepSpec   string `yaml:"sweep_spec"`
}

// Attachment backends
const (
	AttachmentBackendMemory = "memory"
	AttachmentBackendMinio  = "minio"
)

type AttachmentsConfig struct {
	Backend   string `yaml:"backend"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	Region     string `yaml:"region"`
	ExpireDays int    `yaml:"expire_days"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "CONTRACTDESK_"

// DefaultDepartments is the department list offered by the editor
var DefaultDepartments = []string{"業務一部", "業務二部", "採購部", "資訊處", "財務部", "管理部", "行銷部"}

// Load reads the YAML file at path, applies .env and environment overrides,
// then fills defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.applyEnv()
	cfg.setDefaults()

	return &cfg, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Store.SeedFile == "" {
		c.Store.SeedFile = "seed.yaml"
	}
	if c.Session.IdleMinutes == 0 {
		c.Session.IdleMinutes = 120
	}
	if c.Session.SweepSpec == "" {
		c.Session.SweepSpec = "0 */10 * * * *"
	}
	if c.Attachments.Backend == "" {
		c.Attachments.Backend = AttachmentBackendMemory
	}
	if c.Attachments.MaxSizeMB == 0 {
		c.Attachments.MaxSizeMB = 20
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Digest.Spec == "" {
		c.Digest.Spec = "0 0 7 * * *"
	}
	if len(c.Departments) == 0 {
		c.Departments = DefaultDepartments
	}
}

// applyEnv overrides file values with CONTRACTDESK_* variables
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvPrefix + "SEED_FILE"); v != "" {
		c.Store.SeedFile = v
	}
	if v := os.Getenv(EnvPrefix + "ATTACHMENT_BACKEND"); v != "" {
		c.Attachments.Backend = v
	}
	if v := os.Getenv(EnvPrefix + "MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
}

// MaxAttachmentBytes is the upload size limit in bytes
func (c *Config) MaxAttachmentBytes() int64 {
	return int64(c.Attachments.MaxSizeMB) << 20
}
