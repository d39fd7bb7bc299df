package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	LLMProvider  string `mapstructure:"llm_provider"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`
	OpenAIBase   string `mapstructure:"openai_base_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	FactInterval    time.Duration `mapstructure:"fact_interval"`
	MaxImageBytes   int64         `mapstructure:"max_image_bytes"`
	SessionCapacity int           `mapstructure:"session_capacity"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	DispatchWorkers int           `mapstructure:"dispatch_workers"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")

	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("fact_interval", "4s")
	v.SetDefault("max_image_bytes", 10<<20)
	v.SetDefault("session_capacity", 1024)
	v.SetDefault("session_ttl", "1h")
	v.SetDefault("dispatch_workers", 16)
	v.SetDefault("cors_origins", []string{"*"})
}

// Load reads configuration from the environment (PORT, GEMINI_API_KEY, ...).
// Missing API keys are not an error here: the engine reports them per call.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load on a caller-provided viper instance, e.g. one with bound flags.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "gpt", "openai":
	default:
		return fmt.Errorf("LLM_PROVIDER must be gemini or openai, got %q", c.LLMProvider)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is empty")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0")
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be > 0")
	}
	if c.DispatchWorkers <= 0 {
		return fmt.Errorf("DISPATCH_WORKERS must be > 0")
	}
	return nil
}

func (c *Config) Addr() string { return ":" + c.Port }
