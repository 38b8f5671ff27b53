package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/coverage"
	"github.com/joseph-ayodele/coverage-extractor/internal/export"
	"github.com/joseph-ayodele/coverage-extractor/internal/pipeline"
)

type fakeProcessor struct {
	out     pipeline.Output
	err     error
	path    string
	mode    string
	content string
	name    string
}

func (f *fakeProcessor) Process(ctx context.Context, path, mode string) (pipeline.Output, error) {
	f.path, f.mode = path, mode
	f.name = common.FilenameFromContext(ctx)
	b, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Output{}, err
	}
	f.content = string(b)
	return f.out, f.err
}

func newTestRouter(t *testing.T, proc Processor) (http.Handler, common.ServerConfig) {
	t.Helper()
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>upload</h1>"), 0o644))
	cfg := common.ServerConfig{
		UploadDir:   filepath.Join(t.TempDir(), "uploads"),
		MaxUploadMB: 1,
		StaticDir:   static,
		CORSOrigins: []string{"*"},
	}
	return NewRouter(cfg, proc, export.NewService(nil), nil), cfg
}

type part struct {
	field, filename, body string
}

func multipartRequest(t *testing.T, target string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "-" {
			require.NoError(t, mw.WriteField(p.field, p.body))
			continue
		}
		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestExtract_UploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "missing file part",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/extract", part{field: "mode", filename: "-", body: "pattern"})
			},
			message: "No file part",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("{}"))
			},
			message: "No file part",
		},
		{
			name: "empty filename",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/extract", part{field: "file", filename: "", body: ""})
			},
			message: "No selected file",
		},
		{
			name: "disallowed extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/extract", part{field: "file", filename: "policy.docx", body: "x"})
			},
			message: "Invalid file type",
		},
		{
			name: "no extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/extract", part{field: "file", filename: "pdf", body: "x"})
			},
			message: "Invalid file type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			h, _ := newTestRouter(t, proc)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req(t))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
			assert.Empty(t, proc.path)
		})
	}
}

func TestExtract_JSON(t *testing.T) {
	res := coverage.Object{
		{Key: coverage.KeyCollisionDeductible, Value: coverage.Integer(500)},
		{Key: coverage.KeyBodilyInjury, Value: coverage.Object{
			{Key: coverage.KeyPerPerson, Value: coverage.Integer(25000)},
			{Key: coverage.KeyPerAccident, Value: coverage.Integer(50000)},
		}},
	}
	proc := &fakeProcessor{out: pipeline.Output{Result: res}}
	h, cfg := newTestRouter(t, proc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/extract?mode=LLM",
		part{field: "file", filename: "My Dec Page.TXT", body: "Collision $500\n"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"CollisionDeductible":500,"BodilyInjury":{"PerPerson":25000,"PerAccident":50000}}`,
		rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"CollisionDeductible"`))

	assert.Equal(t, "llm", proc.mode)
	assert.Equal(t, "Collision $500\n", proc.content)
	assert.Equal(t, cfg.UploadDir, filepath.Dir(proc.path))
	assert.True(t, strings.HasSuffix(proc.path, "_My_Dec_Page.TXT"))
	assert.Equal(t, "My_Dec_Page.TXT", proc.name)

	_, err := os.Stat(proc.path)
	assert.True(t, os.IsNotExist(err), "upload should be removed after processing")
}

func TestExtract_XLSX(t *testing.T) {
	res := coverage.Object{{Key: coverage.KeyMedicalPayments, Value: coverage.Integer(5000)}}
	proc := &fakeProcessor{out: pipeline.Output{Result: res}}
	h, _ := newTestRouter(t, proc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/extract",
		part{field: "format", filename: "-", body: "xlsx"},
		part{field: "file", filename: "dec.pdf", body: "%PDF-1.4"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="dec_coverage.xlsx"`)
	assert.Equal(t, "", proc.mode)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetCoverage)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{coverage.KeyMedicalPayments, "", "5000"}, rows[1])
}

func TestExtract_InvalidOptions(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
	}{
		{name: "mode", parts: []part{{field: "mode", filename: "-", body: "guess"}}},
		{name: "format", parts: []part{{field: "format", filename: "-", body: "csv"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			h, _ := newTestRouter(t, proc)
			parts := append(tt.parts, part{field: "file", filename: "dec.txt", body: "x"})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, "/extract", parts...))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.name)
			assert.Empty(t, proc.path)
		})
	}
}

func TestExtract_ProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "invalid input",
			err:     common.NewAppError(common.CodeInvalidInput, "llm mode is not configured", common.ErrInvalidInput),
			status:  http.StatusBadRequest,
			message: "llm mode is not configured",
		},
		{
			name:    "upstream",
			err:     common.NewAppError(common.CodeUpstream, "model request failed", common.ErrUpstream),
			status:  http.StatusBadGateway,
			message: "model request failed",
		},
		{
			name:    "extraction",
			err:     common.NewAppError(common.CodeExtraction, "pdf text extraction failed", nil),
			status:  http.StatusInternalServerError,
			message: "pdf text extraction failed",
		},
		{
			name:    "plain error",
			err:     assert.AnError,
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{err: tt.err}
			h, _ := newTestRouter(t, proc)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, "/extract", part{field: "file", filename: "dec.txt", body: "x"}))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
			_, err := os.Stat(proc.path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestExtract_TooLarge(t *testing.T) {
	proc := &fakeProcessor{}
	h, _ := newTestRouter(t, proc)

	big := strings.Repeat("a", 2<<20)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/extract", part{field: "file", filename: "dec.txt", body: big}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, proc.path)
}

func TestHealthzAndStatic(t *testing.T) {
	h, _ := newTestRouter(t, &fakeProcessor{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>upload</h1>")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dec.pdf", "dec.pdf"},
		{"My Dec Page.pdf", "My_Dec_Page.pdf"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{`C:\Users\me\policy.pdf`, "policy.pdf"},
		{"déclaration (1).pdf", "dclaration_1.pdf"},
		{"...", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
