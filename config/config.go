package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Scorer names accepted by SCORER
const (
	ScorerRandom    = "random"
	ScorerHeuristic = "heuristic"
	ScorerLLM       = "llm"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Evaluation    EvaluationConfig
	LLM           LLMConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type EvaluationConfig struct {
	Scorer          string
	DefaultCurrency string
}

// LLMConfig configures the Hugging Face backed scorer
type LLMConfig struct {
	Token           string
	Model           string
	APIURL          string
	CacheTTLSeconds int
	TimeoutSeconds  int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "*")
	v.SetDefault("MAX_BODY_BYTES", 64*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("SCORER", ScorerRandom)
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("HF_MODEL", "mistralai/Mistral-7B-Instruct")
	v.SetDefault("HF_API_URL", "https://api-inference.huggingface.co/models")
	v.SetDefault("LLM_CACHE_TTL", 3600)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 45)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "appraiser-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "max-appraiser")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "0.1.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "appraiser-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),
		},
		Evaluation: EvaluationConfig{
			Scorer:          strings.ToLower(strings.TrimSpace(v.GetString("SCORER"))),
			DefaultCurrency: strings.TrimSpace(v.GetString("DEFAULT_CURRENCY")),
		},
		LLM: LLMConfig{
			Token:           v.GetString("HF_TOKEN"),
			Model:           v.GetString("HF_MODEL"),
			APIURL:          strings.TrimRight(v.GetString("HF_API_URL"), "/"),
			CacheTTLSeconds: v.GetInt("LLM_CACHE_TTL"),
			TimeoutSeconds:  v.GetInt("LLM_TIMEOUT_SECONDS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping blanks
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	switch c.Evaluation.Scorer {
	case ScorerRandom, ScorerHeuristic, ScorerLLM:
	default:
		return fmt.Errorf("unsupported SCORER %q (expected random, heuristic or llm)", c.Evaluation.Scorer)
	}
	if c.Evaluation.DefaultCurrency == "" {
		return fmt.Errorf("DEFAULT_CURRENCY must not be blank")
	}

	if c.Evaluation.Scorer == ScorerLLM && c.LLM.APIURL == "" {
		return fmt.Errorf("HF_API_URL is required when SCORER=llm")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// AllowsAnyOrigin reports whether CORS is open to every origin
func (c *Config) AllowsAnyOrigin() bool {
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
