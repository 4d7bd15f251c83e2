package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultUserID  = "user"
	appDirName     = ".adk-chat"
)

// Config holds connection and local storage settings
type Config struct {
	BaseURL        string       `yaml:"base_url" toml:"base_url"`
	AppName        string       `yaml:"app_name" toml:"app_name"`
	UserID         string       `yaml:"user_id" toml:"user_id"`
	RequestTimeout string       `yaml:"request_timeout,omitempty" toml:"request_timeout,omitempty"`
	DataDir        string       `yaml:"data_dir,omitempty" toml:"data_dir,omitempty"`
	Capabilities   Capabilities `yaml:"capabilities" toml:"capabilities"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	dataDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, appDirName)
	}
	return Config{
		BaseURL: defaultBaseURL,
		UserID:  defaultUserID,
		DataDir: dataDir,
	}
}

// LoadConfig reads settings from path, or from the default config file in
// the data directory when path is empty, then applies environment overrides.
// A missing default file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("ADK_CHAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	explicit := path != ""
	if !explicit {
		path = findDefaultConfig(cfg.DataDir)
	}
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				LogDebug("No config file at %s", path)
			} else {
				return Config{}, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func findDefaultConfig(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dataDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &StorageError{Path: path, Op: "read", Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format: %s (supported: yaml, toml)", path)
	}
	if err != nil {
		return &StorageError{Path: path, Op: "parse", Err: err}
	}
	LogDebug("Loaded config from %s", path)
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADK_CHAT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ADK_CHAT_APP"); v != "" {
		c.AppName = v
	}
	if v := os.Getenv("ADK_CHAT_USER"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("ADK_CHAT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Validate checks that the settings are usable for talking to a backend
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: must be an http(s) URL", c.BaseURL)
	}
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("app name is required (set app_name, ADK_CHAT_APP or --app)")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id is required")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout returns the per-request timeout; zero means none
func (c Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid request_timeout %q: must not be negative", c.RequestTimeout)
	}
	return d, nil
}

// TitlesDBPath returns the path of the local title database
func (c Config) TitlesDBPath() string {
	return filepath.Join(c.DataDir, "titles.db")
}

// CacheDir returns the transcript cache directory
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// LogPath returns the file the interactive UI logs to
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "adk-chat.log")
}
