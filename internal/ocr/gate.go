package ocr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
)

const stageOCR = "ocr"

// State is the outcome of the text check on a document
type State int

const (
	// TextPresent means the document is used as-is
	TextPresent State = iota
	// NeedsRecovery means the document has no extractable text and goes through OCR
	NeedsRecovery
)

func (s State) String() string {
	switch s {
	case TextPresent:
		return "TextPresent"
	case NeedsRecovery:
		return "NeedsRecovery"
	}
	return "Unknown"
}

// Extractor returns the pages of the document at path
type Extractor interface {
	Extract(path string) ([]models.Page, error)
}

// Converter adds a text layer to the document at in and writes it to out
type Converter interface {
	Convert(ctx context.Context, in, out string) error
}

// Prepared is a document ready for chunking. Doc.Path is the original
// file or the OCR output.
type Prepared struct {
	State State
	Doc   models.Document
}

// Gate decides whether a document needs OCR and runs it at most once
type Gate struct {
	Extractor Extractor
	Converter Converter
	// WorkDir receives OCR output files; defaults to the input's directory
	WorkDir string
}

func NewGate(extractor Extractor, converter Converter, workDir string) *Gate {
	return &Gate{Extractor: extractor, Converter: converter, WorkDir: workDir}
}

// Prepare extracts the document and, when no page has text, recovers it
// with the converter and extracts the result.
func (g *Gate) Prepare(ctx context.Context, path string) (*Prepared, error) {
	log.Info().Str("file", path).Msg("Checking if the PDF already contains text")
	pages, err := g.Extractor.Extract(path)
	if err != nil {
		return nil, err
	}

	if parser.HasAnyText(pages) {
		log.Info().Str("state", TextPresent.String()).Msg("The PDF already contains text, OCR is not required")
		return &Prepared{State: TextPresent, Doc: models.Document{Path: path, Pages: pages}}, nil
	}
	return g.runRecovery(ctx, path)
}

func (g *Gate) runRecovery(ctx context.Context, path string) (*Prepared, error) {
	out := g.outputPath(path)
	log.Info().Str("state", NeedsRecovery.String()).Str("output", out).Msg("Running OCR")

	if err := g.Converter.Convert(ctx, path, out); err != nil {
		return nil, models.NewStageError(stageOCR, models.ErrRecoveryFailed, err)
	}
	log.Info().Msg("OCR completed, extracting text")

	pages, err := g.Extractor.Extract(out)
	if err != nil {
		return nil, err
	}
	if !parser.HasAnyText(pages) {
		return nil, models.NewStageError(stageOCR, models.ErrEmptyDocument,
			eris.Errorf("no text on any of %d pages after OCR", len(pages)))
	}
	return &Prepared{State: NeedsRecovery, Doc: models.Document{Path: out, Pages: pages}}, nil
}

func (g *Gate) outputPath(path string) string {
	dir := g.WorkDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+models.OCRSuffix)
}
