// Package pipeline wires text extraction to one of the two coverage paths.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/coverage"
	"github.com/joseph-ayodele/coverage-extractor/internal/llm"
	"github.com/joseph-ayodele/coverage-extractor/internal/textextract"
)

// TextExtractor turns a file on disk into text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (textextract.Result, error)
}

// ModelExtractor is the model-assisted path.
type ModelExtractor interface {
	Extract(ctx context.Context, req llm.ExtractRequest) (coverage.CoverageResult, error)
}

// Summary describes how a result was produced.
type Summary struct {
	Mode       string
	TextMethod string
	Pages      int
	TextChars  int
	Warnings   []string
	Duration   time.Duration
}

type Output struct {
	Result  coverage.CoverageResult
	Text    string
	Summary Summary
}

// Processor coordinates text extraction then field extraction.
type Processor struct {
	logger      *slog.Logger
	text        TextExtractor
	model       ModelExtractor
	defaultMode string
}

// NewProcessor builds a processor. model may be nil, in which case llm mode
// requests are rejected.
func NewProcessor(logger *slog.Logger, text TextExtractor, model ModelExtractor, defaultMode string) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultMode == "" {
		defaultMode = constants.ModePattern
	}
	return &Processor{logger: logger, text: text, model: model, defaultMode: defaultMode}
}

// DefaultMode is the mode used when a request does not name one.
func (p *Processor) DefaultMode() string { return p.defaultMode }

// ModelAvailable reports whether llm mode can be served.
func (p *Processor) ModelAvailable() bool { return p.model != nil }

// Process extracts coverage fields from the file at path. An empty mode uses
// the processor default. The model sees the filename from
// common.WithFilename when set, else the base name of path.
func (p *Processor) Process(ctx context.Context, path, mode string) (Output, error) {
	start := time.Now()
	if mode == "" {
		mode = p.defaultMode
	}
	log := common.LoggerFromContext(ctx, p.logger)

	switch mode {
	case constants.ModePattern:
	case constants.ModeLLM:
		if p.model == nil {
			return Output{}, common.NewAppError(common.CodeInvalidInput, "llm mode is not configured", common.ErrInvalidInput)
		}
	default:
		return Output{}, common.NewAppError(common.CodeInvalidInput, fmt.Sprintf("unknown mode %q", mode), common.ErrInvalidInput)
	}

	tr, err := p.text.Extract(ctx, path)
	if err != nil {
		log.Error("processor.text.failed", "path", path, "err", err)
		return Output{}, err
	}
	log.Info("processor.text.ok",
		"path", path,
		"method", tr.Method,
		"pages", tr.Pages,
		"chars", len(tr.Text),
	)

	var res coverage.CoverageResult
	if mode == constants.ModeLLM {
		hint := common.FilenameFromContext(ctx)
		if hint == "" {
			hint = filepath.Base(path)
		}
		res, err = p.model.Extract(ctx, llm.ExtractRequest{Text: tr.Text, FilenameHint: hint})
		if err != nil {
			log.Error("processor.model.failed", "path", path, "err", err)
			return Output{}, err
		}
	} else {
		res = coverage.ExtractFromText(tr.Text)
	}

	out := Output{
		Result: res,
		Text:   tr.Text,
		Summary: Summary{
			Mode:       mode,
			TextMethod: tr.Method,
			Pages:      tr.Pages,
			TextChars:  len(tr.Text),
			Warnings:   tr.Warnings,
			Duration:   time.Since(start),
		},
	}
	log.Info("processor.extract.ok",
		"path", path,
		"mode", mode,
		"fields", len(res),
		"duration_ms", out.Summary.Duration.Milliseconds(),
	)
	return out, nil
}
