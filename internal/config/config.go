package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("vowctl version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Capture CaptureConfig `mapstructure:"capture"`
}

// APIConfig describes the marketplace backend the client talks to.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig locates the on-disk session state (tokens + cached profile).
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// CaptureConfig configures selfie capture for identity verification.
// Command is run with {{output}} replaced by the destination frame path;
// SourceFile short-circuits the command and uses an existing image instead.
type CaptureConfig struct {
	Command    string `mapstructure:"command"`
	SourceFile string `mapstructure:"source_file"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("api-url", "", "Base URL of the marketplace API (e.g. https://api.example.com/api/v1)")
	pflag.String("session-file", "", "Path to the session state file")
	// Note: no pflag.Parse() here as it's called in main.go
}

// DefaultSessionPath returns the session file location used when none is configured.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".config", "vowctl", "session.json")
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("VOWCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetDefault("api.timeout", "15s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("storage.path", DefaultSessionPath())

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "vowctl"))
	}
	viper.AddConfigPath("/etc/vowctl")

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; flags and environment can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if apiURL := viper.GetString("api-url"); apiURL != "" {
		config.API.BaseURL = apiURL
	}
	if sessionFile := viper.GetString("session-file"); sessionFile != "" {
		config.Storage.Path = sessionFile
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required, please adjust the config or pass --api-url or VOWCTL_API_BASE_URL environment variable")
	}
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")

	if config.API.Timeout <= 0 {
		config.API.Timeout = 15 * time.Second
	}

	return &config, nil
}
