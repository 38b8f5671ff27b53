package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/coverage"
)

// Extractor runs the model-assisted path on top of any Completer.
type Extractor struct {
	completer Completer
	logger    *slog.Logger
}

func NewExtractor(c Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: c, logger: logger}
}

// Extract prompts the model and normalizes its reply. A reply without usable
// JSON is not an error: the result is the {error, raw} payload. Only transport
// failures are returned as errors.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (coverage.CoverageResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()
	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"text_len", len(req.Text),
		"filename", req.FilenameHint,
	)

	raw, err := e.completer.Complete(ctx, BuildSystemPrompt(), BuildUserPrompt(req))
	if err != nil {
		e.logger.Error("llm.extract.completion_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError(common.CodeUpstream, "model completion failed", fmt.Errorf("%w: %w", common.ErrUpstream, err))
	}

	res := coverage.ExtractFromModelOutput(raw)
	if coverage.IsErrorPayload(res) {
		e.logger.Warn("llm.extract.no_json",
			"req_id", rid, "raw_len", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res, nil
	}

	if err := ValidateCoverage(res); err != nil {
		e.logger.Warn("llm.extract.schema_mismatch", "req_id", rid, "error", err)
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(res),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
