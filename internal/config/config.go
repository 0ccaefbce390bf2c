package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables; "__" separates nested keys,
// e.g. LOGVIEWER_SERVER__PORT sets server.port.
const EnvPrefix = "LOGVIEWER_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      *DatabaseConfig      `koanf:"database"`
	Logging       LoggingConfig        `koanf:"logging" validate:"required"`
	LogViewer     LogViewerConfig      `koanf:"logviewer" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Archive       *ArchiveConfig       `koanf:"archive"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (p Primary) IsDevelopment() bool {
	return p.Env == "development" || p.Env == "local"
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"gte=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig is optional. Without it saved searches live in a JSON file.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// URL returns the postgres connection string.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type LoggingConfig struct {
	// Level is the initial minimum level; it can be changed at runtime.
	Level   string `koanf:"level" validate:"required,loglevel"`
	Dir     string `koanf:"dir" validate:"required"`
	Prefix  string `koanf:"prefix" validate:"required"`
	Machine string `koanf:"machine"`
}

type LogViewerConfig struct {
	Source            string `koanf:"source" validate:"required,oneof=jsonfile sqlite"`
	MaxWindowBytes    int64  `koanf:"max_window_bytes" validate:"gt=0"`
	SQLitePath        string `koanf:"sqlite_path" validate:"required_if=Source sqlite"`
	SavedSearchesPath string `koanf:"saved_searches_path" validate:"required"`
}

type AuthConfig struct {
	// SettingsTokenHashes are bcrypt hashes of bearer tokens granted access
	// to the settings section.
	SettingsTokenHashes []string `koanf:"settings_token_hashes"`
	Disabled            bool     `koanf:"disabled"`
}

type ArchiveConfig struct {
	CompressAfterDays int       `koanf:"compress_after_days" validate:"gte=1"`
	RetentionDays     int       `koanf:"retention_days" validate:"gte=0"`
	IntervalMinutes   int       `koanf:"interval_minutes" validate:"gte=1"`
	O3                *O3Config `koanf:"o3"`
}

// O3Config points at an S3-compatible bucket (Akave O3) for archived logs.
type O3Config struct {
	Endpoint  string `koanf:"endpoint" validate:"required"`
	Region    string `koanf:"region"`
	Bucket    string `koanf:"bucket" validate:"required"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// listKeys hold comma separated values in the environment.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
	"auth.settings_token_hashes":  true,
}

// LoadConfig loads .env (when present) and the LOGVIEWER_ environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Load(EnvPrefix)
}

// Load reads configuration from environment variables with the given prefix,
// fills defaults and validates the result.
func Load(prefix string) (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue(prefix, ".", func(key, value string) (string, any) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "__", ".")
		if listKeys[key] {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if !cfg.Auth.Disabled && len(cfg.Auth.SettingsTokenHashes) == 0 {
		return nil, errors.New("validate config: auth.settings_token_hashes is required unless auth.disabled is set")
	}
	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "Information"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
	if c.Logging.Prefix == "" {
		c.Logging.Prefix = "logviewer"
	}
	if c.LogViewer.Source == "" {
		c.LogViewer.Source = "jsonfile"
	}
	if c.LogViewer.MaxWindowBytes == 0 {
		c.LogViewer.MaxWindowBytes = 100 << 20
	}
	if c.LogViewer.SavedSearchesPath == "" {
		c.LogViewer.SavedSearchesPath = "config/logviewer.searches.json"
	}
	if c.Archive != nil {
		if c.Archive.CompressAfterDays == 0 {
			c.Archive.CompressAfterDays = 1
		}
		if c.Archive.IntervalMinutes == 0 {
			c.Archive.IntervalMinutes = 60
		}
	}

	// Observability is a pointer so an absent section can be detected.
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = "logviewer"
	c.Observability.Environment = c.Primary.Env
}
