package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdf-rag/internal/models"
)

type stubSource struct {
	pages []string
	err   error
	errAt int
}

func (s stubSource) NumPage() int { return len(s.pages) }

func (s stubSource) PageText(number int) (string, error) {
	if s.err != nil && number == s.errAt {
		return "", s.err
	}
	return s.pages[number-1], nil
}

func TestExtractPagesEnumeratesTextlessPages(t *testing.T) {
	pages, err := ExtractPages(stubSource{pages: []string{"", "Body text\r\nnext line  ", "  "}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, p.Number)
		}
	}
	if pages[1].Text != "Body text\nnext line" {
		t.Fatalf("text not normalised: %q", pages[1].Text)
	}
	if pages[0].HasText() || !pages[1].HasText() || pages[2].HasText() {
		t.Fatal("unexpected HasText results")
	}
	if CountTextPages(pages) != 1 {
		t.Fatalf("expected 1 page with text, got %d", CountTextPages(pages))
	}
}

func TestExtractPagesFailsOnPageError(t *testing.T) {
	_, err := ExtractPages(stubSource{pages: []string{"a", "b"}, err: errors.New("bad stream"), errAt: 2})
	if !errors.Is(err, models.ErrUnreadableDocument) {
		t.Fatalf("expected unreadable document, got %v", err)
	}
}

func TestHasAnyText(t *testing.T) {
	if HasAnyText(nil) {
		t.Fatal("no pages has no text")
	}
	if HasAnyText([]models.Page{{Number: 1, Text: " \n\t "}, {Number: 2}}) {
		t.Fatal("whitespace is not text")
	}
	if !HasAnyText([]models.Page{{Number: 1}, {Number: 2, Text: "x"}}) {
		t.Fatal("expected text on page 2")
	}
}

func TestPDFExtractorRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := PDFExtractor{}.Extract(path)
	if !errors.Is(err, models.ErrUnreadableDocument) {
		t.Fatalf("expected unreadable document, got %v", err)
	}
}

func TestPDFExtractorMissingFile(t *testing.T) {
	_, err := PDFExtractor{}.Extract(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, models.ErrUnreadableDocument) {
		t.Fatalf("expected unreadable document, got %v", err)
	}
}
