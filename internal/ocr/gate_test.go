package ocr

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"pdf-rag/internal/models"
)

type stubExtractor struct {
	docs  map[string][]models.Page
	err   error
	calls []string
}

func (s *stubExtractor) Extract(path string) ([]models.Page, error) {
	s.calls = append(s.calls, path)
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[path], nil
}

type stubConverter struct {
	calls int
	in    string
	out   string
	err   error
}

func (s *stubConverter) Convert(ctx context.Context, in, out string) error {
	s.calls++
	s.in, s.out = in, out
	return s.err
}

func blankPages(n int) []models.Page {
	pages := make([]models.Page, n)
	for i := range pages {
		pages[i] = models.Page{Number: i + 1, Text: " \n"}
	}
	return pages
}

func TestGateSkipsRecoveryWhenTextPresent(t *testing.T) {
	// three pages, text only on page 2
	pages := []models.Page{{Number: 1}, {Number: 2, Text: "Results section"}, {Number: 3}}
	extractor := &stubExtractor{docs: map[string][]models.Page{"/in/paper.pdf": pages}}
	converter := &stubConverter{}

	prepared, err := NewGate(extractor, converter, "/work").Prepare(context.Background(), "/in/paper.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converter.calls != 0 {
		t.Fatalf("recovery must not run, ran %d times", converter.calls)
	}
	if prepared.State != TextPresent || prepared.Doc.Path != "/in/paper.pdf" {
		t.Fatalf("unexpected result %+v", prepared)
	}
	if len(prepared.Doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(prepared.Doc.Pages))
	}
}

func TestGateRecoversScannedDocumentOnce(t *testing.T) {
	recovered := blankPages(5)
	recovered[0].Text = "Recovered abstract"
	extractor := &stubExtractor{docs: map[string][]models.Page{
		"/in/scan.pdf":       blankPages(5),
		"/work/scan_ocr.pdf": recovered,
	}}
	converter := &stubConverter{}

	prepared, err := NewGate(extractor, converter, "/work").Prepare(context.Background(), "/in/scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converter.calls != 1 {
		t.Fatalf("expected exactly one recovery, got %d", converter.calls)
	}
	if converter.in != "/in/scan.pdf" || converter.out != "/work/scan_ocr.pdf" {
		t.Fatalf("unexpected converter paths %s -> %s", converter.in, converter.out)
	}
	if prepared.State != NeedsRecovery || prepared.Doc.Path != "/work/scan_ocr.pdf" {
		t.Fatalf("unexpected result %+v", prepared)
	}
	if len(extractor.calls) != 2 || extractor.calls[1] != "/work/scan_ocr.pdf" {
		t.Fatalf("expected re-extraction of OCR output, got %v", extractor.calls)
	}
}

func TestGateFailsWhenRecoveryYieldsNoText(t *testing.T) {
	extractor := &stubExtractor{docs: map[string][]models.Page{
		"/in/scan.pdf":       blankPages(5),
		"/work/scan_ocr.pdf": blankPages(5),
	}}
	converter := &stubConverter{}

	_, err := NewGate(extractor, converter, "/work").Prepare(context.Background(), "/in/scan.pdf")
	if !errors.Is(err, models.ErrEmptyDocument) {
		t.Fatalf("expected empty document, got %v", err)
	}
	if converter.calls != 1 {
		t.Fatalf("expected exactly one recovery, got %d", converter.calls)
	}
}

func TestGateSurfacesConverterFailure(t *testing.T) {
	extractor := &stubExtractor{docs: map[string][]models.Page{"/in/scan.pdf": blankPages(2)}}
	converter := &stubConverter{err: errors.New("tesseract not installed")}

	_, err := NewGate(extractor, converter, "").Prepare(context.Background(), "/in/scan.pdf")
	if !errors.Is(err, models.ErrRecoveryFailed) {
		t.Fatalf("expected recovery failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "tesseract not installed") {
		t.Fatalf("diagnostic lost: %v", err)
	}
	var stageErr *models.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "ocr" {
		t.Fatalf("expected ocr stage error, got %v", err)
	}
	if len(extractor.calls) != 1 {
		t.Fatalf("must not extract after failed recovery, got %v", extractor.calls)
	}
}

func TestGatePropagatesUnreadableDocument(t *testing.T) {
	extractor := &stubExtractor{err: models.NewStageError("extract", models.ErrUnreadableDocument, nil)}
	converter := &stubConverter{}

	_, err := NewGate(extractor, converter, "").Prepare(context.Background(), "/in/broken.pdf")
	if !errors.Is(err, models.ErrUnreadableDocument) {
		t.Fatalf("expected unreadable document, got %v", err)
	}
	if converter.calls != 0 {
		t.Fatal("recovery must not run on unreadable input")
	}
}

func TestOutputPathDefaultsToInputDir(t *testing.T) {
	g := NewGate(nil, nil, "")
	if got := g.outputPath("/data/thesis.pdf"); got != filepath.Join("/data", "thesis_ocr.pdf") {
		t.Fatalf("unexpected output path %s", got)
	}
}

func TestOCRmyPDFReportsDiagnostic(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	conv := NewOCRmyPDF("sh", []string{"-c", "echo 'page 1: no image' >&2; exit 3", "ocr"})

	err := conv.Convert(context.Background(), "in.pdf", "out.pdf")
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "page 1: no image") {
		t.Fatalf("diagnostic missing from %v", err)
	}
}

func TestOCRmyPDFPassesPaths(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out := filepath.Join(t.TempDir(), "out.pdf")
	conv := NewOCRmyPDF("sh", []string{"-c", `cp "$1" "$2"`, "ocr"})

	if err := conv.Convert(context.Background(), "gate_test.go", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStateString(t *testing.T) {
	if TextPresent.String() != "TextPresent" || NeedsRecovery.String() != "NeedsRecovery" {
		t.Fatal("unexpected state names")
	}
}
