package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel    = "gemini-2.0-flash-exp"
	DefaultMaxUploadBytes = 16 << 20
	defaultLLMTimeout     = 120 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port           string
	Env            string
	UploadDir      string
	MaxUploadBytes int64
	LLMProvider    string
	LLMModel       string
	LLMTimeout     time.Duration
	GeminiAPIKey   string
	OpenAIAPIKey   string
	SecretKey      string
	StrictSchema   bool
	LogLevel       string
	OTelEnabled    bool
	OTelEndpoint   string
	OTelInsecure   bool
	OTelSampler    float64
}

// Load reads configuration from environment variables. Values from .env
// files and the optional CONFIG_FILE yaml act as defaults; real environment
// variables always win.
func Load() (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", file.LLM.Provider))
	model := getEnv("LLM_MODEL", file.LLM.Model)
	if model == "" && provider == ProviderGemini {
		model = DefaultGeminiModel
	}

	timeout := defaultLLMTimeout
	if secs := getInt("LLM_TIMEOUT_SECONDS", int64(file.LLM.TimeoutSeconds)); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	maxUpload := getInt("MAX_UPLOAD_BYTES", file.MaxUploadBytes)
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	secret := getEnv("SECRET_KEY", getEnv("FLASK_SECRET_KEY", file.SecretKey))

	return Config{
		Port:           getEnv("PORT", orDefault(file.Port, "8080")),
		Env:            normalizeEnv(getEnv("ENV", file.Env)),
		UploadDir:      getEnv("UPLOAD_DIR", orDefault(file.UploadDir, "uploads")),
		MaxUploadBytes: maxUpload,
		LLMProvider:    provider,
		LLMModel:       model,
		LLMTimeout:     timeout,
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		SecretKey:      secret,
		StrictSchema:   getBool("MINDMAP_STRICT_SCHEMA", file.StrictSchema),
		LogLevel:       getEnv("LOG_LEVEL", orDefault(file.LogLevel, "info")),
		OTelEnabled:    getBool("OTEL_ENABLED", false),
		OTelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:   getBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OTelSampler:    getFloat("OTEL_SAMPLER_RATIO", 1),
	}, nil
}

// Validate reports configuration the server cannot start without.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is missing or invalid")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required")
		}
		if strings.TrimSpace(c.LLMModel) == "" {
			return errors.New("LLM_MODEL is required for OpenAI")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY is required")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return def
	}
	return parsed
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return def
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "", ProviderGemini, "google":
		return ProviderGemini
	default:
		return p
	}
}
