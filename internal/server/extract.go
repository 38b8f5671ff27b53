package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/export"
)

// Client-facing messages of the upload endpoint.
const (
	msgNoFilePart   = "No file part"
	msgNoSelected   = "No selected file"
	msgInvalidType  = "Invalid file type"
	msgTooLarge     = "File too large"
	msgInternalFail = "Internal server error"
)

const formField = "file"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

type extractHandler struct {
	proc      Processor
	exporter  Exporter
	uploadDir string
	maxBytes  int64
	logger    *slog.Logger
}

// Extract handles POST /extract. The upload is stored under a unique name,
// processed, and removed before the response is written.
func (h *extractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	log := common.LoggerFromContext(r.Context(), h.logger)
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFilePart)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(formField)
	if err != nil {
		// A part with an empty filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value[formField]; ok {
			writeError(w, http.StatusBadRequest, msgNoSelected)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFilePart)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, msgNoSelected)
		return
	}
	if !constants.IsAllowedFilename(header.Filename) {
		writeError(w, http.StatusBadRequest, msgInvalidType)
		return
	}

	mode := strings.ToLower(r.FormValue("mode"))
	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = constants.FormatJSON
	}
	v := common.NewValidator().Field("format", format, common.OneOf(constants.FormatJSON, constants.FormatXLSX))
	if mode != "" {
		v.Field("mode", mode, common.OneOf(constants.Modes...))
	}
	if v.HasErrors() {
		writeError(w, http.StatusBadRequest, v.ErrorMessage())
		return
	}

	name := sanitizeFilename(header.Filename)
	path, err := h.save(file, name)
	if err != nil {
		log.Error("http.extract.save_failed", "filename", name, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternalFail)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("http.extract.cleanup_failed", "path", path, "err", err)
		}
	}()

	out, err := h.proc.Process(common.WithFilename(r.Context(), name), path, mode)
	if err != nil {
		status := statusFor(err)
		log.Error("http.extract.failed", "filename", name, "status", status, "err", err)
		writeError(w, status, errorMessage(err))
		return
	}
	log.Info("http.extract.ok",
		"filename", name,
		"mode", out.Summary.Mode,
		"fields", len(out.Result),
		"format", format,
	)

	if format == constants.FormatXLSX {
		b, err := h.exporter.CoverageXLSX(out.Result)
		if err != nil {
			log.Error("http.extract.export_failed", "filename", name, "err", err)
			writeError(w, http.StatusInternalServerError, msgInternalFail)
			return
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stem+"_coverage.xlsx"))
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}
	writeJSON(w, http.StatusOK, out.Result)
}

func (h *extractHandler) save(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+"_"+name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// sanitizeFilename keeps the base name, turns whitespace into underscores and
// drops anything outside [A-Za-z0-9_.-].
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

func statusFor(err error) int {
	switch common.ErrorCode(err) {
	case common.CodeInvalidInput, common.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case common.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return msgInternalFail
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
