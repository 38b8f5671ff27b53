package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/coverage-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Extract ExtractConfig
	LLM     LLMConfig
	Log     LogConfig
}

// ServerConfig holds HTTP and health endpoint configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCHealthAddr string
	UploadDir      string
	MaxUploadMB    int
	StaticDir      string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// ExtractConfig holds text and field extraction configuration
type ExtractConfig struct {
	Mode         string
	PDFBackend   string
	PDFToTextBin string
	PDFMaxPages  int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	Temperature   float32
	Timeout       time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment values win.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config.dotenv.failed", "err", err)
	}
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":5000"),
			GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 20),
			StaticDir:      getEnv("STATIC_DIR", "web"),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		},
		Extract: ExtractConfig{
			Mode:         strings.ToLower(getEnv("EXTRACT_MODE", constants.ModePattern)),
			PDFBackend:   strings.ToLower(getEnv("PDF_BACKEND", constants.BackendNative)),
			PDFToTextBin: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			PDFMaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", constants.ProviderOpenAI)),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// APIKey returns the key of the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == constants.ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("UPLOAD_DIR", c.Server.UploadDir, Required).
		Field("MAX_UPLOAD_MB", c.Server.MaxUploadMB, Positive).
		Field("EXTRACT_MODE", c.Extract.Mode, OneOf(constants.Modes...)).
		Field("PDF_BACKEND", c.Extract.PDFBackend, OneOf(constants.PDFBackends...)).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf(constants.Providers...))
	if c.Extract.Mode == constants.ModeLLM {
		v.Field("LLM API key", c.LLM.APIKey(), Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
