// Package textextract reads declaration pages from disk as plain text.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
)

type Config struct {
	Backend   string // constants.BackendNative | BackendPDFToText | BackendFitz; empty -> native
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.FileTypePDF | constants.FileTypeTXT
	Method     string // "plain-text" | "pdf-native" | "pdftotext" | "pdf-fitz"
	Duration   time.Duration
	Warnings   []string
}

// pdfBackend turns a PDF file into page texts.
type pdfBackend interface {
	name() string
	pages(ctx context.Context, path string, maxPages int) ([]string, []string, error)
}

type Extractor struct {
	cfg     Config
	runner  Runner
	backend pdfBackend
	logger  *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner used by the pdftotext backend.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Backend == "" {
		cfg.Backend = constants.BackendNative
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	switch cfg.Backend {
	case constants.BackendPDFToText:
		e.backend = pdftotextBackend{bin: cfg.Pdftotext, runner: e.runner}
	case constants.BackendFitz:
		e.backend = fitzBackend{}
	default:
		e.backend = nativeBackend{}
	}
	return e
}

// Extract reads path as text, picking a strategy from its extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("textextract.start", "path", path, "ext", ext, "backend", e.backend.name())

	switch ext {
	case constants.FileTypeTXT:
		b, err := os.ReadFile(path)
		if err != nil {
			return Result{SourceType: ext}, common.NewAppError(common.CodeExtraction, "read text file", err)
		}
		return Result{
			Text:       normalizeNewlines(string(b)),
			Pages:      1,
			SourceType: ext,
			Method:     "plain-text",
			Duration:   time.Since(start),
		}, nil
	case constants.FileTypePDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		if err != nil {
			e.logger.Error("textextract.pdf.failed", "path", path, "backend", e.backend.name(), "error", err)
			return res, err
		}
		e.logger.Info("textextract.pdf.ok",
			"path", path,
			"backend", e.backend.name(),
			"pages", res.Pages,
			"chars", len(res.Text),
			"duration_ms", res.Duration.Milliseconds(),
		)
		return res, nil
	default:
		e.logger.Error("textextract.unsupported", "extension", ext)
		return Result{}, common.NewAppError(common.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported extension: %q", ext), common.ErrUnsupportedFormat)
	}
}

// extractPDF joins page texts with every page followed by a newline.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.FileTypePDF, Method: methodName(e.backend)}
	pages, warns, err := e.backend.pages(ctx, path, e.cfg.MaxPages)
	res.Warnings = warns
	if err != nil {
		var ae *common.AppError
		if !errors.As(err, &ae) {
			err = common.NewAppError(common.CodeExtraction, "pdf text extraction failed", err)
		}
		return res, err
	}
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(normalizeNewlines(p))
		b.WriteString("\n")
	}
	res.Text = b.String()
	res.Pages = len(pages)
	return res, nil
}

func methodName(b pdfBackend) string {
	switch b.name() {
	case constants.BackendPDFToText:
		return "pdftotext"
	case constants.BackendFitz:
		return "pdf-fitz"
	default:
		return "pdf-native"
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func limitPages(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}
