package common

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coverage-extractor/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "GRPC_HEALTH_ADDR", "UPLOAD_DIR", "MAX_UPLOAD_MB", "STATIC_DIR", "CORS_ORIGINS",
		"REQUEST_TIMEOUT", "EXTRACT_MODE", "PDF_BACKEND", "PDFTOTEXT_BIN", "PDF_MAX_PAGES",
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "GEMINI_API_KEY",
		"GEMINI_MODEL", "LLM_TEMPERATURE", "LLM_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadConfig()

	assert.Equal(t, ":5000", cfg.Server.HTTPAddr)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, 20, cfg.Server.MaxUploadMB)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, constants.ModePattern, cfg.Extract.Mode)
	assert.Equal(t, constants.BackendNative, cfg.Extract.PDFBackend)
	assert.Equal(t, constants.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("EXTRACT_MODE", "LLM")
	t.Setenv("PDF_BACKEND", "PdfToText")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_TEMPERATURE", "0.5")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("PDF_MAX_PAGES", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 5, cfg.Server.MaxUploadMB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, constants.ModeLLM, cfg.Extract.Mode)
	assert.Equal(t, constants.BackendPDFToText, cfg.Extract.PDFBackend)
	assert.Equal(t, 0, cfg.Extract.PDFMaxPages)
	assert.Equal(t, float32(0.5), cfg.LLM.Temperature)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "g-key", cfg.LLM.APIKey())
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Server.HTTPAddr = " " }, field: "HTTP_ADDR"},
		{name: "zero upload size", mutate: func(c *Config) { c.Server.MaxUploadMB = 0 }, field: "MAX_UPLOAD_MB"},
		{name: "unknown mode", mutate: func(c *Config) { c.Extract.Mode = "regex" }, field: "EXTRACT_MODE"},
		{name: "unknown backend", mutate: func(c *Config) { c.Extract.PDFBackend = "ocr" }, field: "PDF_BACKEND"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "claude" }, field: "LLM_PROVIDER"},
		{name: "llm without key", mutate: func(c *Config) { c.Extract.Mode = constants.ModeLLM }, field: "LLM API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := LoadConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, CodeConfig, ErrorCode(err))
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestIDFromContext(ctx))
	assert.Equal(t, "rid-1", RequestIDFromContext(WithRequestID(ctx, "rid-1")))

	var buf bytes.Buffer
	fallback := NewLogger(&buf, LogConfig{Format: "text"})
	assert.Same(t, fallback, LoggerFromContext(ctx, fallback))

	scoped := NewLogger(&buf, LogConfig{Format: "json"})
	assert.Same(t, scoped, LoggerFromContext(WithLogger(ctx, scoped), fallback))

	c, cancel := WithTimeout(ctx, 0)
	defer cancel()
	_, hasDeadline := c.Deadline()
	assert.False(t, hasDeadline)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogConfig{Level: "warn", Format: "text"}).Info("skipped")
	assert.Empty(t, buf.String())

	NewLogger(&buf, LogConfig{Level: "debug", Format: "text"}).Debug("http.request", "status", 200)
	assert.Equal(t, "msg=http.request status=200\n", buf.String())

	buf.Reset()
	NewLogger(&buf, LogConfig{Format: "JSON"}).Info("app.ready")
	assert.Contains(t, buf.String(), `"msg":"app.ready"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}
