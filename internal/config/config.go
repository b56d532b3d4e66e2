package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"dealflow_backend/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres | sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	Google struct {
		ClientID     string   `yaml:"client_id"`
		ClientSecret string   `yaml:"client_secret"`
		RedirectURL  string   `yaml:"redirect_url"`
		Scopes       []string `yaml:"scopes"`
	} `yaml:"google"`

	Matching struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"matching"`

	Scheduler struct {
		Enabled         bool          `yaml:"enabled"`
		Interval        time.Duration `yaml:"interval"`
		PairDelay       time.Duration `yaml:"pair_delay"`
		RunTimeout      time.Duration `yaml:"run_timeout"`
		MeetingDuration time.Duration `yaml:"meeting_duration"`
	} `yaml:"scheduler"`

	Calendar struct {
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		DefaultCalendarID string        `yaml:"default_calendar_id"`
		DisableConference bool          `yaml:"disable_conference"`
	} `yaml:"calendar"`

	Security struct {
		// Base64 encoded 32-byte key; empty disables token sealing.
		TokenEncryptionKey string `yaml:"token_encryption_key"`
	} `yaml:"security"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	// FirstAdminEmail seeds an admin account on startup when set.
	FirstAdminEmail string `yaml:"first_admin_email"`
}

var AppConfig *Config

// LoadConfig loads the global configuration and exits on failure.
func LoadConfig() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "path", configPath, "error", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// Load reads the YAML file at path (optional when DATABASE_URL is set),
// applies environment overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("DATABASE_URL") != "":
		// environment-only mode (containers, tests)
	default:
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&cfg.Security.TokenEncryptionKey, "TOKEN_ENCRYPTION_KEY")
	setString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")

	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		cfg.Server.Port = port
	}
	if enabled, err := strconv.ParseBool(os.Getenv("SCHEDULER_ENABLED")); err == nil {
		cfg.Scheduler.Enabled = enabled
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if len(cfg.Google.Scopes) == 0 {
		cfg.Google.Scopes = []string{
			"https://www.googleapis.com/auth/calendar.events",
			"https://www.googleapis.com/auth/calendar.readonly",
		}
	}
	if cfg.Matching.CacheTTL <= 0 {
		cfg.Matching.CacheTTL = 24 * time.Hour
	}
	if cfg.Scheduler.Interval <= 0 {
		cfg.Scheduler.Interval = time.Hour
	}
	if cfg.Scheduler.PairDelay <= 0 {
		cfg.Scheduler.PairDelay = 500 * time.Millisecond
	}
	if cfg.Scheduler.RunTimeout <= 0 {
		cfg.Scheduler.RunTimeout = 10 * time.Minute
	}
	if cfg.Scheduler.MeetingDuration <= 0 {
		cfg.Scheduler.MeetingDuration = 30 * time.Minute
	}
	if cfg.Calendar.RequestTimeout <= 0 {
		cfg.Calendar.RequestTimeout = 10 * time.Second
	}
	if cfg.Calendar.DefaultCalendarID == "" {
		cfg.Calendar.DefaultCalendarID = "primary"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if _, err := c.TokenKey(); err != nil {
		return err
	}
	return nil
}

// TokenKey decodes the token encryption key; nil means sealing is disabled.
func (c *Config) TokenKey() ([]byte, error) {
	if c.Security.TokenEncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Security.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("token encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GoogleEnabled reports whether calendar OAuth is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
