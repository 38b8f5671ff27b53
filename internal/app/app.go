// Package app assembles the extractor components from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/export"
	"github.com/joseph-ayodele/coverage-extractor/internal/llm"
	"github.com/joseph-ayodele/coverage-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/coverage-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/coverage-extractor/internal/pipeline"
	"github.com/joseph-ayodele/coverage-extractor/internal/server"
	"github.com/joseph-ayodele/coverage-extractor/internal/textextract"
)

type App struct {
	Processor *pipeline.Processor
	Exporter  *export.Service
	Server    *server.Server
	Health    *server.HealthServer

	closers []func() error
	logger  *slog.Logger
}

// NewApp builds the processor, exporter and HTTP server. The gRPC health
// server is only created when GRPC_HEALTH_ADDR is set.
func NewApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	proc, closeModel, err := NewProcessor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeModel != nil {
		a.closers = append(a.closers, closeModel)
	}
	a.Processor = proc
	a.Exporter = export.NewService(logger)
	a.Server = server.NewServer(cfg.Server, a.Processor, a.Exporter, logger)

	if cfg.Server.GRPCHealthAddr != "" {
		hs, err := server.NewHealthServer(cfg.Server.GRPCHealthAddr, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("grpc health: %w", err)
		}
		a.Health = hs
	}

	logger.Info("app.ready",
		"mode", proc.DefaultMode(),
		"llm", proc.ModelAvailable(),
		"pdf_backend", cfg.Extract.PDFBackend,
		"http_addr", cfg.Server.HTTPAddr,
	)
	return a, nil
}

// Close releases model clients.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("app.close.failed", "err", err)
		}
	}
	a.closers = nil
}

// NewProcessor builds the text extractor and, when an API key for the
// configured provider is present, the model extractor. The returned close
// func is nil when there is nothing to release.
func NewProcessor(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, func() error, error) {
	text := textextract.NewExtractor(textextract.Config{
		Backend:   cfg.Extract.PDFBackend,
		Pdftotext: cfg.Extract.PDFToTextBin,
		MaxPages:  cfg.Extract.PDFMaxPages,
	}, logger)

	completer, closeFn, err := newCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, err
	}
	var model pipeline.ModelExtractor
	if completer != nil {
		model = llm.NewExtractor(completer, logger)
	}
	return pipeline.NewProcessor(logger, text, model, cfg.Extract.Mode), closeFn, nil
}

func newCompleter(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, func() error, error) {
	if cfg.APIKey() == "" {
		logger.Info("app.llm.disabled", "provider", cfg.Provider)
		return nil, nil, nil
	}
	switch cfg.Provider {
	case constants.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "gemini client", err)
		}
		return timeoutCompleter{next: c, timeout: cfg.Timeout}, c.Close, nil
	default:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil, nil
	}
}

// timeoutCompleter bounds each completion for clients that have no HTTP
// timeout of their own.
type timeoutCompleter struct {
	next    llm.Completer
	timeout time.Duration
}

func (t timeoutCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := common.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, system, user)
}
