package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "REVIEW_SCANNER_CONFIG"
	databasePathEnv     = "DATABASE_PATH"
	googleEmailEnv      = "GOOGLE_EMAIL"
	googlePasswordEnv   = "GOOGLE_PASSWORD"
	classifierURLEnv    = "CLASSIFIER_URL"
	classifierAPIKeyEnv = "CLASSIFIER_API_KEY"
	httpAddrEnv         = "HTTP_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Browser    BrowserConfig    `yaml:"browser"`
	Auth       AuthConfig       `yaml:"auth"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes the sqlite cache store location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig controls how the Chromium instance is launched.
type BrowserConfig struct {
	// Headed runs Chromium with a visible window. Off means headless.
	Headed         bool   `yaml:"headed"`
	ExecutablePath string `yaml:"executablePath"`
	UserAgent      string `yaml:"userAgent"`
	Locale         string `yaml:"locale"`
	ViewportWidth  int    `yaml:"viewportWidth"`
	ViewportHeight int    `yaml:"viewportHeight"`
}

// AuthConfig wires the identity-provider login flow. Empty credentials mean
// anonymous mode; no login attempt is made.
type AuthConfig struct {
	LoginURL    string `yaml:"loginUrl"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	SessionPath string `yaml:"sessionPath"`
	DebugDir    string `yaml:"debugDir"`
	// StrictValidation fails the login attempt when no authenticated URL is
	// reached in time. When false, a timeout without a known failure signal
	// counts as tentative success.
	StrictValidation bool `yaml:"strictValidation"`
}

// ExtractionConfig tunes the incremental loading loop.
type ExtractionConfig struct {
	DefaultLimit        int    `yaml:"defaultLimit"`
	MaxStagnantRounds   int    `yaml:"maxStagnantRounds"`
	NavigationTimeoutMs int    `yaml:"navigationTimeoutMs"`
	ContainerTimeoutMs  int    `yaml:"containerTimeoutMs"`
	MinPauseMs          int    `yaml:"minPauseMs"`
	MaxPauseMs          int    `yaml:"maxPauseMs"`
	ExportCSV           bool   `yaml:"exportCsv"`
	CSVDir              string `yaml:"csvDir"`
}

// ClassifierConfig defines how to contact the sentiment inference service.
type ClassifierConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(googleEmailEnv); v != "" {
		c.Auth.Email = v
	}

	if v := os.Getenv(googlePasswordEnv); v != "" {
		c.Auth.Password = v
	}

	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.Endpoint = v
	}

	if v := os.Getenv(classifierAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Browser.Headed {
		base.Browser.Headed = true
	}
	if override.Browser.ExecutablePath != "" {
		base.Browser.ExecutablePath = override.Browser.ExecutablePath
	}
	if override.Browser.UserAgent != "" {
		base.Browser.UserAgent = override.Browser.UserAgent
	}
	if override.Browser.Locale != "" {
		base.Browser.Locale = override.Browser.Locale
	}
	if override.Browser.ViewportWidth > 0 {
		base.Browser.ViewportWidth = override.Browser.ViewportWidth
	}
	if override.Browser.ViewportHeight > 0 {
		base.Browser.ViewportHeight = override.Browser.ViewportHeight
	}

	if override.Auth.LoginURL != "" {
		base.Auth.LoginURL = override.Auth.LoginURL
	}
	if override.Auth.Email != "" {
		base.Auth.Email = override.Auth.Email
	}
	if override.Auth.Password != "" {
		base.Auth.Password = override.Auth.Password
	}
	if override.Auth.SessionPath != "" {
		base.Auth.SessionPath = override.Auth.SessionPath
	}
	if override.Auth.DebugDir != "" {
		base.Auth.DebugDir = override.Auth.DebugDir
	}
	if override.Auth.StrictValidation {
		base.Auth.StrictValidation = true
	}

	if override.Extraction.DefaultLimit > 0 {
		base.Extraction.DefaultLimit = override.Extraction.DefaultLimit
	}
	if override.Extraction.MaxStagnantRounds > 0 {
		base.Extraction.MaxStagnantRounds = override.Extraction.MaxStagnantRounds
	}
	if override.Extraction.NavigationTimeoutMs > 0 {
		base.Extraction.NavigationTimeoutMs = override.Extraction.NavigationTimeoutMs
	}
	if override.Extraction.ContainerTimeoutMs > 0 {
		base.Extraction.ContainerTimeoutMs = override.Extraction.ContainerTimeoutMs
	}
	if override.Extraction.MinPauseMs > 0 {
		base.Extraction.MinPauseMs = override.Extraction.MinPauseMs
	}
	if override.Extraction.MaxPauseMs > 0 {
		base.Extraction.MaxPauseMs = override.Extraction.MaxPauseMs
	}
	if override.Extraction.ExportCSV {
		base.Extraction.ExportCSV = true
	}
	if override.Extraction.CSVDir != "" {
		base.Extraction.CSVDir = override.Extraction.CSVDir
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "cache.db"},
		Browser: BrowserConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Locale:         "es-ES",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		},
		Auth: AuthConfig{
			LoginURL:    "https://accounts.google.com/ServiceLogin?hl=es",
			SessionPath: "cookies.json",
			DebugDir:    "debug",
		},
		Extraction: ExtractionConfig{
			DefaultLimit:        50,
			MaxStagnantRounds:   5,
			NavigationTimeoutMs: 60000,
			ContainerTimeoutMs:  20000,
			MinPauseMs:          2000,
			MaxPauseMs:          4000,
			CSVDir:              ".",
		},
		Classifier: ClassifierConfig{
			Endpoint: "http://localhost:9090/classify",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
