// ABOUTME: Coach configuration management with backend selection.
// ABOUTME: Handles the JSON config file, environment overrides, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harperreed/coach/internal/charm"
	"github.com/harperreed/coach/internal/storage"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultBackend         = "sqlite"
	DefaultHTTPAddr        = ":3001"
	DefaultSyncSchedule    = "@every 6h"
	DefaultSyncConcurrency = 4
	DefaultGarminBaseURL   = "https://apis.garmin.com"
	DefaultGarminScopes    = "read,write"
	DefaultKafkaPrefix     = "coach"
)

// Config stores coach tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "postgres", or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. SQLite puts coach.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/coach.
	DataDir string `json:"data_dir,omitempty"`

	// PostgresDSN is the pgx connection string used by the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// DefaultUser is the user ID (or prefix) commands act on when --user is not given.
	DefaultUser string `json:"default_user,omitempty"`

	Garmin GarminConfig `json:"garmin"`
	Kafka  KafkaConfig  `json:"kafka"`

	HTTPAddr        string `json:"http_addr,omitempty"`
	SyncSchedule    string `json:"sync_schedule,omitempty"`
	SyncConcurrency int    `json:"sync_concurrency,omitempty"`
	LogLevel        string `json:"log_level,omitempty"`
}

// GarminConfig holds OAuth client settings and API endpoints.
type GarminConfig struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	AuthorizeURL string `json:"authorize_url,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`
	UserInfoURL  string `json:"userinfo_url,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	Scopes       string `json:"scopes,omitempty"`
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string `json:"brokers,omitempty"`
	TopicPrefix string   `json:"topic_prefix,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetHTTPAddr returns the API listen address.
func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}

// GetSyncSchedule returns the cron spec for background sync.
func (c *Config) GetSyncSchedule() string {
	if c.SyncSchedule == "" {
		return DefaultSyncSchedule
	}
	return c.SyncSchedule
}

// GetSyncConcurrency returns how many users sync in parallel.
func (c *Config) GetSyncConcurrency() int {
	if c.SyncConcurrency <= 0 {
		return DefaultSyncConcurrency
	}
	return c.SyncConcurrency
}

// GetBaseURL returns the Garmin API base URL.
func (g GarminConfig) GetBaseURL() string {
	if g.BaseURL == "" {
		return DefaultGarminBaseURL
	}
	return g.BaseURL
}

// GetScopes returns the OAuth scopes with all whitespace removed.
func (g GarminConfig) GetScopes() string {
	scopes := g.Scopes
	if scopes == "" {
		scopes = DefaultGarminScopes
	}
	return strings.Join(strings.Fields(scopes), "")
}

// GetTopicPrefix returns the Kafka topic prefix.
func (k KafkaConfig) GetTopicPrefix() string {
	if k.TopicPrefix == "" {
		return DefaultKafkaPrefix
	}
	return k.TopicPrefix
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()

	switch backend {
	case "sqlite":
		return storage.Open(filepath.Join(c.GetDataDir(), "coach.db"))
	case "postgres":
		if c.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires postgres_dsn or COACH_POSTGRES_DSN")
		}
		return storage.OpenPostgres(c.PostgresDSN)
	case "charm":
		return charm.InitClient()
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// ApplyEnv overrides config values with any COACH_* and GARMIN_* variables set.
func (c *Config) ApplyEnv() {
	setString(&c.Backend, "COACH_BACKEND")
	setString(&c.DataDir, "COACH_DATA_DIR")
	setString(&c.PostgresDSN, "COACH_POSTGRES_DSN")
	setString(&c.DefaultUser, "COACH_USER")
	setString(&c.HTTPAddr, "COACH_HTTP_ADDR")
	setString(&c.SyncSchedule, "COACH_SYNC_SCHEDULE")
	setString(&c.LogLevel, "COACH_LOG_LEVEL")
	setString(&c.Kafka.TopicPrefix, "COACH_KAFKA_TOPIC_PREFIX")

	setString(&c.Garmin.ClientID, "GARMIN_CLIENT_ID")
	setString(&c.Garmin.ClientSecret, "GARMIN_CLIENT_SECRET")
	setString(&c.Garmin.AuthorizeURL, "GARMIN_OAUTH_AUTHORIZE_URL")
	setString(&c.Garmin.TokenURL, "GARMIN_OAUTH_TOKEN_URL")
	setString(&c.Garmin.UserInfoURL, "GARMIN_USERINFO_URL")
	setString(&c.Garmin.BaseURL, "GARMIN_BASE_URL")
	setString(&c.Garmin.RedirectURI, "GARMIN_REDIRECT_URI")
	setString(&c.Garmin.Scopes, "GARMIN_SCOPES")

	if v := os.Getenv("COACH_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Kafka.Brokers = brokers
	}
	if v := os.Getenv("COACH_SYNC_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SyncConcurrency = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "coach", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads config from disk only. A missing file yields an empty config.
func LoadFile() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

// SaveDefaultUser persists userID as the default user without writing
// environment overrides into the file.
func SaveDefaultUser(userID string) error {
	cfg, err := LoadFile()
	if err != nil {
		return err
	}
	cfg.DefaultUser = userID
	return cfg.Save()
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
