// Package config resolves geminichat configuration with precedence
// defaults < config file < GEMINICHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "geminichat"

// RenderConfig configures the message renderer and display adapters
type RenderConfig struct {
	ListScope string `mapstructure:"list_scope" toml:"list_scope"` // "fragment" or "runs"
	Style     string `mapstructure:"style" toml:"style"`           // glamour style for code blocks
	Width     int    `mapstructure:"width" toml:"width"`
}

// APIConfig configures the transport to the generation endpoint
type APIConfig struct {
	MaxHistoryTurns int `mapstructure:"max_history_turns" toml:"max_history_turns"` // 0 sends everything
}

// TUIConfig configures the interactive chat
type TUIConfig struct {
	Theme string `mapstructure:"theme" toml:"theme"`
}

// ServeConfig configures the generation backend
type ServeConfig struct {
	Addr   string `mapstructure:"addr" toml:"addr"`
	APIKey string `mapstructure:"api_key" toml:"api_key"`
}

// Config represents the resolved configuration
type Config struct {
	ServerURL      string       `mapstructure:"server_url" toml:"server_url"`
	DefaultModel   string       `mapstructure:"default_model" toml:"default_model"`
	Locale         string       `mapstructure:"locale" toml:"locale"`
	TimeoutSeconds int          `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	LogFile        string       `mapstructure:"log_file" toml:"log_file"`
	Verbose        bool         `mapstructure:"verbose" toml:"verbose"`
	API            APIConfig    `mapstructure:"api" toml:"api"`
	Render         RenderConfig `mapstructure:"render" toml:"render"`
	TUI            TUIConfig    `mapstructure:"tui" toml:"tui"`
	Serve          ServeConfig  `mapstructure:"serve" toml:"serve"`
}

// ConfigOption is one documented configuration key with its default.
type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns every configuration key, its default and meaning.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "server_url", Default: "http://127.0.0.1:5000", Comment: "Base URL of the generation endpoint"},
		{Key: "default_model", Default: "gemini-2.5-flash", Comment: "Model used when none is selected"},
		{Key: "locale", Default: "bn", Comment: "Fixed UI strings: bn or en"},
		{Key: "timeout_seconds", Default: 120, Comment: "Request timeout for the generation endpoint"},
		{Key: "log_file", Default: defaultLogFile(), Comment: "Log destination while the TUI owns the terminal"},
		{Key: "verbose", Default: false, Comment: "Enable debug logging"},
		{Key: "api.max_history_turns", Default: 0, Comment: "Send only the newest N turns as context; 0 sends all"},
		{Key: "render.list_scope", Default: "fragment", Comment: "List wrapping: fragment wraps everything, runs wraps consecutive list lines"},
		{Key: "render.style", Default: "dark", Comment: "Glamour style used to highlight code blocks"},
		{Key: "render.width", Default: 80, Comment: "Terminal render width"},
		{Key: "tui.theme", Default: "tokyonight", Comment: "TUI color theme"},
		{Key: "serve.addr", Default: ":5000", Comment: "Listen address of the generation backend"},
		{Key: "serve.api_key", Default: "", Comment: "Gemini API key used by the backend"},
	}
}

func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// DefaultConfig returns the configuration with only defaults applied
func DefaultConfig() Config {
	v := viper.New()
	applyDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".geminichat"), nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultLogFile() string {
	dir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "geminichat.log")
	}
	return filepath.Join(dir, "logs", "geminichat.log")
}

// Load resolves configuration into v and returns the decoded Config.
// When path is empty the standard locations are searched and a missing file
// is not an error; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Locale = strings.ToLower(strings.TrimSpace(cfg.Locale))
	cfg.Render.ListScope = strings.ToLower(strings.TrimSpace(cfg.Render.ListScope))

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from the standard locations.
func LoadConfig() (Config, error) {
	return Load(viper.New(), "")
}

// Validate reports every invalid value at once.
func Validate(cfg Config) error {
	var errs []error
	if u, err := url.Parse(cfg.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url %q is not an absolute URL", cfg.ServerURL))
	}
	if strings.TrimSpace(cfg.DefaultModel) == "" {
		errs = append(errs, errors.New("default_model is required"))
	}
	if cfg.Locale != "bn" && cfg.Locale != "en" {
		errs = append(errs, fmt.Errorf("locale must be bn or en, got %q", cfg.Locale))
	}
	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("timeout_seconds must be greater than 0"))
	}
	if cfg.API.MaxHistoryTurns < 0 {
		errs = append(errs, errors.New("api.max_history_turns must not be negative"))
	}
	if cfg.Render.ListScope != "fragment" && cfg.Render.ListScope != "runs" {
		errs = append(errs, fmt.Errorf("render.list_scope must be fragment or runs, got %q", cfg.Render.ListScope))
	}
	if cfg.Render.Width <= 0 {
		errs = append(errs, errors.New("render.width must be greater than 0"))
	}
	return errors.Join(errs...)
}

// ToTOML encodes cfg for display; the API key is redacted.
func ToTOML(cfg Config) ([]byte, error) {
	if cfg.Serve.APIKey != "" {
		cfg.Serve.APIKey = "********"
	}
	return toml.Marshal(cfg)
}

// SaveConfig writes cfg to the default config path.
func SaveConfig(cfg Config) (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
