package parser

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

const stageExtract = "extract"

// PageSource is a paginated document with per-page plain text
type PageSource interface {
	NumPage() int
	PageText(number int) (string, error)
}

// PDFExtractor extracts per-page text from PDF files
type PDFExtractor struct{}

// Extract opens the pdf at filePath and returns every page, including
// pages without text.
func (PDFExtractor) Extract(filePath string) (pages []models.Page, err error) {
	// ledongthuc/pdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = models.NewStageError(stageExtract, models.ErrUnreadableDocument,
				eris.Errorf("failed to parse %s: %v", filePath, r))
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, models.NewStageError(stageExtract, models.ErrUnreadableDocument, eris.Wrap(err, "failed to open document"))
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return nil, models.NewStageError(stageExtract, models.ErrUnreadableDocument, eris.Wrap(err, "failed to stat document"))
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, models.NewStageError(stageExtract, models.ErrUnreadableDocument, eris.Wrap(err, "failed to read pdf"))
	}

	pages, err = ExtractPages(pdfSource{reader: reader})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", filePath).Int("pages", len(pages)).Int("with_text", CountTextPages(pages)).Msg("Extracted pages")
	return pages, nil
}

type pdfSource struct {
	reader *pdf.Reader
}

func (s pdfSource) NumPage() int {
	return s.reader.NumPage()
}

func (s pdfSource) PageText(number int) (string, error) {
	page := s.reader.Page(number)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// ExtractPages reads every page of src in order
func ExtractPages(src PageSource) ([]models.Page, error) {
	numPages := src.NumPage()
	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := src.PageText(i)
		if err != nil {
			return nil, models.NewStageError(stageExtract, models.ErrUnreadableDocument,
				eris.Wrapf(err, "failed to extract page %d", i))
		}
		pages = append(pages, models.Page{Number: i, Text: normalizePlainText(text)})
	}
	return pages, nil
}

// HasAnyText is true iff at least one page has non-whitespace text
func HasAnyText(pages []models.Page) bool {
	for _, p := range pages {
		if p.HasText() {
			return true
		}
	}
	return false
}

func CountTextPages(pages []models.Page) int {
	n := 0
	for _, p := range pages {
		if p.HasText() {
			n++
		}
	}
	return n
}

func normalizePlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
