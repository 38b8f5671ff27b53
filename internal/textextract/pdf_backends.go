package textextract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
)

// pdftotextBackend shells out to poppler's pdftotext.
type pdftotextBackend struct {
	bin    string
	runner Runner
}

func (pdftotextBackend) name() string { return constants.BackendPDFToText }

func (b pdftotextBackend) pages(ctx context.Context, path string, maxPages int) ([]string, []string, error) {
	if _, err := b.runner.LookPath(b.bin); err != nil {
		return nil, nil, common.NewAppError(common.CodeExtraction,
			fmt.Sprintf("%s is required for PDF extraction", b.bin),
			fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err))
	}
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, "-")
	out, errb, err := b.runner.Run(ctx, b.bin, args...)
	if err != nil {
		return nil, []string{strings.TrimSpace(string(errb))}, err
	}
	// A form-feed \f separates pages; the last page is followed by one too.
	pages := strings.Split(string(out), "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil, nil
}

// nativeBackend reads the text layer with the pure-Go ledongthuc/pdf reader.
type nativeBackend struct{}

func (nativeBackend) name() string { return constants.BackendNative }

func (nativeBackend) pages(ctx context.Context, path string, maxPages int) ([]string, []string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := limitPages(r.NumPage(), maxPages)
	pages := make([]string, 0, n)
	var warns []string
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, warns, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i, err))
			pages = append(pages, "")
			continue
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, warns, nil
}

// joinRow glues the text runs of one row, inserting a space where the
// horizontal gap between runs is wider than a fraction of the font size.
func joinRow(texts []pdf.Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > prev.FontSize*0.15 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}

// fitzBackend uses MuPDF through go-fitz.
type fitzBackend struct{}

func (fitzBackend) name() string { return constants.BackendFitz }

func (fitzBackend) pages(ctx context.Context, path string, maxPages int) ([]string, []string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := limitPages(doc.NumPage(), maxPages)
	pages := make([]string, 0, n)
	var warns []string
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, warns, err
		}
		txt, err := doc.Text(i)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, warns, nil
}
