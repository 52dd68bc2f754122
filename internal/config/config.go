package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/marquee/internal/output"
)

// Version is the marquee release version.
const Version = "0.4.0"

// Config holds all marquee configuration.
type Config struct {
	Source          SourceConfig  `yaml:"source"`
	Engine          EngineConfig  `yaml:"engine"`
	Output          OutputConfig  `yaml:"output"`
	LogLevel        string        `yaml:"logLevel"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// SourceConfig selects where raw records come from.
type SourceConfig struct {
	Provider string `yaml:"provider"`
	Path     string `yaml:"path"` // "-" for stdin
	Follow   bool   `yaml:"follow"` // watch only
	Limit    int    `yaml:"limit"` // 0 = no limit
}

// EngineConfig holds resolution settings.
type EngineConfig struct {
	Features      []string      `yaml:"features"`
	Grouping      bool          `yaml:"grouping"`
	Verbosity     string        `yaml:"verbosity"` // "minimal", "standard", "full"
	DedupWindow   time.Duration `yaml:"dedupWindow"`
	MaxBufferSize int           `yaml:"maxBufferSize"`
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Encoding       string            `yaml:"encoding"` // "json", "yaml", "text"
	Pretty         bool              `yaml:"pretty"`
	FilePath       string            `yaml:"filePath"`
	FileMaxSize    int64             `yaml:"fileMaxSize"`
	FileMaxBackups int               `yaml:"fileMaxBackups"`
	WebhookURL     string            `yaml:"webhookURL"`
	WebhookHeaders map[string]string `yaml:"webhookHeaders"`
	WebhookBatch   int               `yaml:"webhookBatch"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Provider: "file",
			Path:     "-",
			Follow:   true,
		},
		Engine: EngineConfig{
			Verbosity:     "standard",
			MaxBufferSize: 1000,
		},
		Output: OutputConfig{
			Encoding:       "json",
			FileMaxBackups: 9,
			WebhookBatch:   50,
		},
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile overlays a YAML config file on the defaults. Environment
// variables still take precedence over the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Source.Provider = getenv("MARQUEE_SOURCE", c.Source.Provider)
	c.Source.Path = getenv("MARQUEE_PATH", c.Source.Path)
	c.Source.Follow = getenvBool("MARQUEE_FOLLOW", c.Source.Follow)
	c.Source.Limit = getenvInt("MARQUEE_LIMIT", c.Source.Limit)

	if v := os.Getenv("MARQUEE_FEATURES"); v != "" {
		c.Engine.Features = splitList(v)
	}
	c.Engine.Grouping = getenvBool("MARQUEE_GROUPING", c.Engine.Grouping)
	c.Engine.Verbosity = getenv("MARQUEE_VERBOSITY", c.Engine.Verbosity)
	c.Engine.DedupWindow = getenvDuration("MARQUEE_DEDUP_WINDOW", c.Engine.DedupWindow)
	c.Engine.MaxBufferSize = getenvInt("MARQUEE_MAX_BUFFER_SIZE", c.Engine.MaxBufferSize)

	c.Output.Encoding = getenv("MARQUEE_OUTPUT", c.Output.Encoding)
	c.Output.Pretty = getenvBool("MARQUEE_OUTPUT_PRETTY", c.Output.Pretty)
	c.Output.FilePath = getenv("MARQUEE_OUTPUT_FILE", c.Output.FilePath)
	c.Output.FileMaxSize = int64(getenvInt("MARQUEE_OUTPUT_FILE_MAX_SIZE", int(c.Output.FileMaxSize)))
	c.Output.FileMaxBackups = getenvInt("MARQUEE_OUTPUT_FILE_MAX_BACKUPS", c.Output.FileMaxBackups)
	c.Output.WebhookURL = getenv("MARQUEE_WEBHOOK_URL", c.Output.WebhookURL)
	c.Output.WebhookBatch = getenvInt("MARQUEE_WEBHOOK_BATCH", c.Output.WebhookBatch)
	if h := loadWebhookHeaders(); h != nil {
		c.Output.WebhookHeaders = h
	}

	c.LogLevel = getenv("MARQUEE_LOG_LEVEL", c.LogLevel)
	c.ShutdownTimeout = getenvDuration("MARQUEE_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	switch c.Engine.Verbosity {
	case "minimal", "standard", "full":
	default:
		errs = append(errs, fmt.Errorf("invalid verbosity %q (want minimal, standard or full)", c.Engine.Verbosity))
	}
	if c.Engine.DedupWindow < 0 {
		errs = append(errs, fmt.Errorf("dedup window must not be negative, got %v", c.Engine.DedupWindow))
	}
	if c.Engine.MaxBufferSize < 0 {
		errs = append(errs, fmt.Errorf("max buffer size must not be negative, got %d", c.Engine.MaxBufferSize))
	}

	if c.Source.Provider == "" {
		errs = append(errs, errors.New("source provider is required (MARQUEE_SOURCE)"))
	}
	if c.Source.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative, got %d", c.Source.Limit))
	}

	if _, err := output.ParseEncoding(c.Output.Encoding); err != nil {
		errs = append(errs, err)
	}
	if c.Output.FileMaxSize < 0 {
		errs = append(errs, fmt.Errorf("output file max size must not be negative, got %d", c.Output.FileMaxSize))
	}
	if c.Output.WebhookURL != "" {
		u, err := url.Parse(c.Output.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid webhook URL %q (MARQUEE_WEBHOOK_URL)", c.Output.WebhookURL))
		}
		if c.Output.WebhookBatch < 1 {
			errs = append(errs, fmt.Errorf("webhook batch must be positive, got %d", c.Output.WebhookBatch))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getenvDuration accepts Go durations ("5s") and treats "0" as disabled.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// loadWebhookHeaders reads MARQUEE_WEBHOOK_HEADERS ("K=V,K2=V2").
func loadWebhookHeaders() map[string]string {
	var m map[string]string
	for _, pair := range splitList(os.Getenv("MARQUEE_WEBHOOK_HEADERS")) {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[k] = strings.TrimSpace(v)
	}
	return m
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
