// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Playwright PlaywrightConfig `mapstructure:"playwright" yaml:"playwright"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Registry   RegistryConfig   `mapstructure:"registry" yaml:"registry"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LLMConfig configures the OpenRouter completion endpoint used by the
// intent interpreter. The endpoint speaks the OpenAI chat-completions
// wire format.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
}

// PlaywrightConfig points at the remote automation server and tunes the
// protocol client.
type PlaywrightConfig struct {
	ServerURL      string        `mapstructure:"server_url" yaml:"server_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// ActionDelay is the settle pause inserted between consecutive plan
	// steps. A stability heuristic, not a correctness guarantee.
	ActionDelay time.Duration `mapstructure:"action_delay" yaml:"action_delay"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	ScreenshotDir   string        `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// RegistryConfig tunes the execution registry.
type RegistryConfig struct {
	// MaxWorkers bounds the number of concurrently running executions.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
	// MaxRecords caps retained records; 0 keeps every record for the
	// process lifetime. Only terminal records are ever evicted.
	MaxRecords int `mapstructure:"max_records" yaml:"max_records"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- LLM --
	v.SetDefault("llm.model", "openai/gpt-3.5-turbo")
	v.SetDefault("llm.endpoint", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.api_timeout", "30s")

	// -- Playwright server --
	v.SetDefault("playwright.server_url", "http://localhost:3000")
	v.SetDefault("playwright.request_timeout", "60s")
	v.SetDefault("playwright.action_delay", "500ms")

	// -- HTTP front end --
	v.SetDefault("server.listen_addr", ":8000")
	v.SetDefault("server.screenshot_dir", ".")
	v.SetDefault("server.shutdown_timeout", "30s")

	// -- Registry --
	v.SetDefault("registry.max_workers", 4)
	v.SetDefault("registry.max_records", 0)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data. OPENROUTER_API_KEY is
	// honored alongside the prefixed form for compatibility with the
	// hosted endpoint's conventional variable name.
	v.BindEnv("llm.api_key", "WEBPILOT_LLM_API_KEY", "OPENROUTER_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
// The LLM API key is deliberately not required here; commands that reach
// the interpreter validate it at the point of use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Playwright.ServerURL) == "" {
		return fmt.Errorf("playwright.server_url is a required configuration field")
	}
	if c.Playwright.RequestTimeout <= 0 {
		return fmt.Errorf("playwright.request_timeout must be a positive duration")
	}
	if c.Playwright.ActionDelay < 0 {
		return fmt.Errorf("playwright.action_delay must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be a positive integer")
	}
	if c.Registry.MaxWorkers <= 0 {
		return fmt.Errorf("registry.max_workers must be a positive integer")
	}
	if c.Registry.MaxRecords < 0 {
		return fmt.Errorf("registry.max_records must not be negative")
	}
	return nil
}
