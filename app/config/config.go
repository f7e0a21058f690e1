// Package config loads postapp settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"postapp/app/mail"
	"postapp/app/repositories"

	"gopkg.in/yaml.v3"
)

// Config holds all postapp settings.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Mail      MailConfig      `yaml:"mail"`
	Site      SiteConfig      `yaml:"site"`
	Blog      BlogConfig      `yaml:"blog"`
	Templates TemplatesConfig `yaml:"templates"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	StaticDir       string `yaml:"static_dir"`
}

type StoreConfig struct {
	// Driver is badger, postgres or sqlite.
	Driver string `yaml:"driver"`
	// Path is the badger data directory.
	Path string `yaml:"path"`
	// DSN is used by the postgres and sqlite drivers.
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

type MailConfig struct {
	Backend  string `yaml:"backend"`
	From     string `yaml:"from"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SiteConfig struct {
	// BaseURL prefixes links in outgoing mail. Empty means the request host.
	BaseURL string `yaml:"base_url"`
}

type BlogConfig struct {
	PageSize     int `yaml:"page_size"`
	SimilarLimit int `yaml:"similar_limit"`
}

type TemplatesConfig struct {
	// Dir overrides the built-in templates when set.
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Store: StoreConfig{
			Driver:          repositories.DriverBadger,
			Path:            "data",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Mail: MailConfig{
			Backend: mail.BackendLog,
			From:    mail.DefaultFrom,
			Port:    25,
		},
		Blog: BlogConfig{
			PageSize:     3,
			SimilarLimit: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"POSTAPP_ADDR":          &c.Server.Addr,
		"POSTAPP_STORE_DRIVER":  &c.Store.Driver,
		"POSTAPP_STORE_PATH":    &c.Store.Path,
		"DATABASE_URL":          &c.Store.DSN,
		"POSTAPP_MAIL_BACKEND":  &c.Mail.Backend,
		"POSTAPP_MAIL_FROM":     &c.Mail.From,
		"POSTAPP_SMTP_HOST":     &c.Mail.Host,
		"POSTAPP_SMTP_USER":     &c.Mail.Username,
		"POSTAPP_SMTP_PASSWORD": &c.Mail.Password,
		"POSTAPP_BASE_URL":      &c.Site.BaseURL,
		"POSTAPP_TEMPLATES_DIR": &c.Templates.Dir,
		"POSTAPP_LOG_LEVEL":     &c.Logging.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("POSTAPP_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTAPP_SMTP_PORT %q: %w", v, err)
		}
		c.Mail.Port = port
	}
	return nil
}

// GetShutdownTimeout returns the shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// StoreOptions converts the store section for repositories.Open.
func (c *Config) StoreOptions() repositories.Options {
	return repositories.Options{
		Driver:          c.Store.Driver,
		Path:            c.Store.Path,
		DSN:             c.Store.DSN,
		MaxOpenConns:    c.Store.MaxOpenConns,
		MaxIdleConns:    c.Store.MaxIdleConns,
		ConnMaxLifetime: c.Store.ConnMaxLifetime,
	}
}

// MailOptions converts the mail section for mail.New.
func (c *Config) MailOptions() mail.Options {
	return mail.Options{
		Backend:  c.Mail.Backend,
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case repositories.DriverBadger:
	case repositories.DriverPostgres, repositories.DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %s needs a dsn (set store.dsn or DATABASE_URL)", c.Store.Driver)
		}
	default:
		return fmt.Errorf("invalid store driver: %q (valid: badger, postgres, sqlite)", c.Store.Driver)
	}

	switch c.Mail.Backend {
	case mail.BackendLog, mail.BackendMemory:
	case mail.BackendSMTP:
		if c.Mail.Host == "" {
			return fmt.Errorf("mail backend smtp needs a host")
		}
	default:
		return fmt.Errorf("invalid mail backend: %q (valid: smtp, log, memory)", c.Mail.Backend)
	}

	if c.Blog.PageSize < 1 {
		return fmt.Errorf("blog.page_size must be at least 1, got %d", c.Blog.PageSize)
	}
	if c.Blog.SimilarLimit < 0 {
		return fmt.Errorf("blog.similar_limit cannot be negative")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout %q: %w", c.Server.ShutdownTimeout, err)
	}
	return nil
}
