package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported LLM provider identifiers.
const (
	ProviderKimi   = "kimi"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// Structured output modes.
const (
	StructuredOutputAuto    = "auto"
	StructuredOutputNative  = "native"
	StructuredOutputExtract = "extract"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Retry   RetryConfig
	Image   ImageConfig
	Auth    AuthConfig
	CORS    CORSConfig
	Tracing TracingConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// ProviderConfig holds settings for the active LLM provider. It is resolved
// once at startup and never mutated afterwards.
type ProviderConfig struct {
	Provider         string   `mapstructure:"provider"`
	APIKey           string   `mapstructure:"api_key"`
	BaseURL          string   `mapstructure:"base_url"`
	Model            string   `mapstructure:"model"`
	MaxRetries       int      `mapstructure:"max_retries"`
	TimeoutSecs      int      `mapstructure:"timeout_secs"`
	MaxTokens        int      `mapstructure:"max_tokens"`
	Temperature      *float64 `mapstructure:"temperature"`
	StructuredOutput string   `mapstructure:"structured_output"`
}

// ProviderCredentials holds the per-provider endpoint settings.
type ProviderCredentials struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LLMConfig holds LLM provider selection and the shared client settings.
type LLMConfig struct {
	Provider          string   `mapstructure:"provider"`
	FallbackProviders []string `mapstructure:"fallback_providers"`
	Kimi              ProviderCredentials
	OpenAI            ProviderCredentials
	Claude            ProviderCredentials
	Gemini            ProviderCredentials
	MaxRetries        int      `mapstructure:"max_retries"`
	TimeoutSecs       int      `mapstructure:"timeout_secs"`
	MaxTokens         int      `mapstructure:"max_tokens"`
	Temperature       *float64 `mapstructure:"temperature"`
	StructuredOutput  string   `mapstructure:"structured_output"`
}

// Credentials returns the endpoint settings for the named provider.
func (l *LLMConfig) Credentials(provider string) (ProviderCredentials, bool) {
	switch provider {
	case ProviderKimi:
		return l.Kimi, true
	case ProviderOpenAI:
		return l.OpenAI, true
	case ProviderClaude:
		return l.Claude, true
	case ProviderGemini:
		return l.Gemini, true
	default:
		return ProviderCredentials{}, false
	}
}

// ActiveProvider resolves the ProviderConfig for the selected provider.
func (l *LLMConfig) ActiveProvider() (*ProviderConfig, error) {
	return l.ProviderConfig(l.Provider)
}

// ProviderConfig resolves the ProviderConfig for the named provider, sharing
// the client settings of the active one.
func (l *LLMConfig) ProviderConfig(provider string) (*ProviderConfig, error) {
	creds, ok := l.Credentials(provider)
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %q", provider)
	}
	return &ProviderConfig{
		Provider:         provider,
		APIKey:           creds.APIKey,
		BaseURL:          creds.BaseURL,
		Model:            creds.Model,
		MaxRetries:       l.MaxRetries,
		TimeoutSecs:      l.TimeoutSecs,
		MaxTokens:        l.MaxTokens,
		Temperature:      l.Temperature,
		StructuredOutput: l.StructuredOutput,
	}, nil
}

// RetryConfig holds the agent-level retry policy settings.
type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
}

// ImageConfig holds the bounds applied before an image is sent to the LLM.
type ImageConfig struct {
	MaxWidth  int `mapstructure:"max_width"`
	MaxHeight int `mapstructure:"max_height"`
	MaxPixels int `mapstructure:"max_pixels"`
}

// AuthConfig holds bearer token settings. An empty APIKeys list means only
// the header format is checked.
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TracingConfig holds settings for the external run tracer.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Project  string `mapstructure:"project"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MAESTRO_ prefix.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MAESTRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.request_timeout", "170s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// LLM defaults
	v.SetDefault("llm.provider", ProviderKimi)
	v.SetDefault("llm.fallback_providers", "")
	v.SetDefault("llm.kimi.api_key", "")
	v.SetDefault("llm.kimi.base_url", "https://api.moonshot.cn/v1")
	v.SetDefault("llm.kimi.model", "moonshot-v1-8k-vision-preview")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.claude.api_key", "")
	v.SetDefault("llm.claude.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("llm.claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", "")
	v.SetDefault("llm.structured_output", StructuredOutputAuto)

	// Retry defaults
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", "1s")
	v.SetDefault("retry.backoff_factor", 2.0)
	v.SetDefault("retry.max_delay", "10s")

	// Image defaults
	v.SetDefault("image.max_width", 2048)
	v.SetDefault("image.max_height", 2048)
	v.SetDefault("image.max_pixels", 50_000_000)

	// Auth defaults
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.api_keys", "")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", "*")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "https://api.smith.langchain.com")
	v.SetDefault("tracing.api_key", "")
	v.SetDefault("tracing.project", "maestro-ai-server")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "MAESTRO_SERVER_PORT",
		"server.read_timeout":     "MAESTRO_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "MAESTRO_SERVER_WRITE_TIMEOUT",
		"server.request_timeout":  "MAESTRO_SERVER_REQUEST_TIMEOUT",
		"server.shutdown_timeout": "MAESTRO_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":      "MAESTRO_SERVER_ENVIRONMENT",
		"llm.provider":            "MAESTRO_LLM_PROVIDER",
		"llm.fallback_providers":  "MAESTRO_LLM_FALLBACK_PROVIDERS",
		"llm.kimi.api_key":        "MAESTRO_LLM_KIMI_API_KEY",
		"llm.kimi.base_url":       "MAESTRO_LLM_KIMI_BASE_URL",
		"llm.kimi.model":          "MAESTRO_LLM_KIMI_MODEL",
		"llm.openai.api_key":      "MAESTRO_LLM_OPENAI_API_KEY",
		"llm.openai.base_url":     "MAESTRO_LLM_OPENAI_BASE_URL",
		"llm.openai.model":        "MAESTRO_LLM_OPENAI_MODEL",
		"llm.claude.api_key":      "MAESTRO_LLM_CLAUDE_API_KEY",
		"llm.claude.base_url":     "MAESTRO_LLM_CLAUDE_BASE_URL",
		"llm.claude.model":        "MAESTRO_LLM_CLAUDE_MODEL",
		"llm.gemini.api_key":      "MAESTRO_LLM_GEMINI_API_KEY",
		"llm.gemini.base_url":     "MAESTRO_LLM_GEMINI_BASE_URL",
		"llm.gemini.model":        "MAESTRO_LLM_GEMINI_MODEL",
		"llm.max_retries":         "MAESTRO_LLM_MAX_RETRIES",
		"llm.timeout_secs":        "MAESTRO_LLM_TIMEOUT_SECS",
		"llm.max_tokens":          "MAESTRO_LLM_MAX_TOKENS",
		"llm.temperature":         "MAESTRO_LLM_TEMPERATURE",
		"llm.structured_output":   "MAESTRO_LLM_STRUCTURED_OUTPUT",
		"retry.max_attempts":      "MAESTRO_RETRY_MAX_ATTEMPTS",
		"retry.initial_delay":     "MAESTRO_RETRY_INITIAL_DELAY",
		"retry.backoff_factor":    "MAESTRO_RETRY_BACKOFF_FACTOR",
		"retry.max_delay":         "MAESTRO_RETRY_MAX_DELAY",
		"image.max_width":         "MAESTRO_IMAGE_MAX_WIDTH",
		"image.max_height":        "MAESTRO_IMAGE_MAX_HEIGHT",
		"image.max_pixels":        "MAESTRO_IMAGE_MAX_PIXELS",
		"auth.enabled":            "MAESTRO_AUTH_ENABLED",
		"auth.api_keys":           "MAESTRO_AUTH_API_KEYS",
		"cors.allowed_origins":    "MAESTRO_CORS_ALLOWED_ORIGINS",
		"tracing.enabled":         "MAESTRO_TRACING_ENABLED",
		"tracing.endpoint":        "MAESTRO_TRACING_ENDPOINT",
		"tracing.api_key":         "MAESTRO_TRACING_API_KEY",
		"tracing.project":         "MAESTRO_TRACING_PROJECT",
		"log.level":               "MAESTRO_LOG_LEVEL",
		"log.format":              "MAESTRO_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MAESTRO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MAESTRO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		RequestTimeout:  v.GetDuration("server.request_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}

	temperature, err := parseOptionalFloat(v.GetString("llm.temperature"))
	if err != nil {
		return nil, fmt.Errorf("llm.temperature: %w", err)
	}
	cfg.LLM = LLMConfig{
		Provider:          strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
		FallbackProviders: splitList(strings.ToLower(v.GetString("llm.fallback_providers"))),
		Kimi:              credentials(v, ProviderKimi),
		OpenAI:            credentials(v, ProviderOpenAI),
		Claude:            credentials(v, ProviderClaude),
		Gemini:            credentials(v, ProviderGemini),
		MaxRetries:        v.GetInt("llm.max_retries"),
		TimeoutSecs:       v.GetInt("llm.timeout_secs"),
		MaxTokens:         v.GetInt("llm.max_tokens"),
		Temperature:       temperature,
		StructuredOutput:  strings.ToLower(v.GetString("llm.structured_output")),
	}

	cfg.Retry = RetryConfig{
		MaxAttempts:   v.GetInt("retry.max_attempts"),
		InitialDelay:  v.GetDuration("retry.initial_delay"),
		BackoffFactor: v.GetFloat64("retry.backoff_factor"),
		MaxDelay:      v.GetDuration("retry.max_delay"),
	}
	cfg.Image = ImageConfig{
		MaxWidth:  v.GetInt("image.max_width"),
		MaxHeight: v.GetInt("image.max_height"),
		MaxPixels: v.GetInt("image.max_pixels"),
	}
	cfg.Auth = AuthConfig{
		Enabled: v.GetBool("auth.enabled"),
		APIKeys: splitList(v.GetString("auth.api_keys")),
	}
	// Parse CORS allowed origins from comma-separated string
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Tracing = TracingConfig{
		Enabled:  v.GetBool("tracing.enabled"),
		Endpoint: strings.TrimRight(v.GetString("tracing.endpoint"), "/"),
		APIKey:   v.GetString("tracing.api_key"),
		Project:  v.GetString("tracing.project"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if _, ok := c.LLM.Credentials(c.LLM.Provider); !ok {
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	for _, p := range c.LLM.FallbackProviders {
		if _, ok := c.LLM.Credentials(p); !ok {
			return fmt.Errorf("unknown llm fallback provider: %q", p)
		}
		if p == c.LLM.Provider {
			return fmt.Errorf("llm fallback provider %q duplicates the primary provider", p)
		}
	}
	switch c.LLM.StructuredOutput {
	case StructuredOutputAuto, StructuredOutputNative, StructuredOutputExtract:
	default:
		return fmt.Errorf("llm.structured_output must be one of auto, native, extract; got %q", c.LLM.StructuredOutput)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Image.MaxWidth < 1 || c.Image.MaxHeight < 1 || c.Image.MaxPixels < 1 {
		return fmt.Errorf("image bounds must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Server.WriteTimeout > 0 && c.Server.RequestTimeout >= c.Server.WriteTimeout {
		return fmt.Errorf("server.request_timeout (%s) must be shorter than server.write_timeout (%s)",
			c.Server.RequestTimeout, c.Server.WriteTimeout)
	}
	return nil
}

func credentials(v *viper.Viper, provider string) ProviderCredentials {
	return ProviderCredentials{
		APIKey:  v.GetString("llm." + provider + ".api_key"),
		BaseURL: strings.TrimRight(v.GetString("llm."+provider+".base_url"), "/"),
		Model:   v.GetString("llm." + provider + ".model"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &f, nil
}
