package rag

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
	"pdf-rag/internal/ocr"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/retrieval"
)

// Deps are the external collaborators of a session
type Deps struct {
	Extractor ocr.Extractor
	Converter ocr.Converter
	Embedder  embeddings.Embedder
	LLM       llmservice.Completer
}

type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	MapConcurrency int
	// WorkDir is the parent of the session's scratch directory
	WorkDir string
}

// LoadSummary describes the document currently loaded in a session
type LoadSummary struct {
	Source    string
	Path      string
	State     ocr.State
	Pages     int
	TextPages int
	Chunks    int
}

// Session runs the pipeline for one user: one document and one question at
// a time. It is not safe for concurrent use.
type Session struct {
	ID string

	gate     *ocr.Gate
	embedder embeddings.Embedder
	synth    *Synthesizer
	opts     Options
	workDir  string
	logger   zerolog.Logger

	loaded *LoadSummary
	index  *retrieval.Index
}

func NewSession(deps Deps, opts Options) (*Session, error) {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = models.DefaultChunkSize
		opts.ChunkOverlap = models.DefaultChunkOverlap
	}
	if opts.TopK <= 0 {
		opts.TopK = models.DefaultTopK
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(opts.WorkDir, "pdf-rag-")
	if err != nil {
		return nil, eris.Wrap(err, "failed to create session work dir")
	}

	s := &Session{
		ID:       id,
		gate:     ocr.NewGate(deps.Extractor, deps.Converter, workDir),
		embedder: deps.Embedder,
		synth:    NewSynthesizer(deps.LLM, opts.MapConcurrency),
		opts:     opts,
		workDir:  workDir,
		logger:   log.With().Str("session", id).Logger(),
	}
	s.logger.Debug().Str("work_dir", workDir).Msg("Session started")
	return s, nil
}

// Load replaces the current document. The previous index is dropped before
// anything else, so a failed load leaves the session with no document.
func (s *Session) Load(ctx context.Context, path string) (*LoadSummary, error) {
	s.reset()

	prepared, err := s.gate.Prepare(ctx, path)
	if err != nil {
		return nil, err
	}
	textPages := parser.CountTextPages(prepared.Doc.Pages)
	s.logger.Info().Int("pages", textPages).Msg("Pages extracted")

	chunks, err := parser.Split(prepared.Doc.Pages, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("chunks", len(chunks)).Msg("Split text into chunks")

	index, err := retrieval.Build(ctx, s.embedder, chunks)
	if err != nil {
		return nil, err
	}

	s.index = index
	s.loaded = &LoadSummary{
		Source:    path,
		Path:      prepared.Doc.Path,
		State:     prepared.State,
		Pages:     len(prepared.Doc.Pages),
		TextPages: textPages,
		Chunks:    len(chunks),
	}
	return s.loaded, nil
}

// Loaded returns the summary of the current document, or nil
func (s *Session) Loaded() *LoadSummary {
	return s.loaded
}

// Retrieve returns the chunks for query from the current document
func (s *Session) Retrieve(ctx context.Context, query string) (models.RetrievalResult, error) {
	if s.index == nil {
		return models.RetrievalResult{}, models.NewStageError("retrieve", models.ErrNoDocument, nil)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return models.RetrievalResult{}, models.NewStageError("retrieve", models.ErrEmptyQuery, nil)
	}
	return s.index.Query(ctx, query, s.opts.TopK)
}

// Ask answers query with the selected strategy. A failed answer leaves the
// index in place so the question can be asked again.
func (s *Session) Ask(ctx context.Context, query string, mode models.Mode) (*models.Response, error) {
	switch mode {
	case models.ModeQA, models.ModeQuotes, "":
	default:
		return nil, models.NewStageError("ask", models.ErrUnknownMode, eris.Errorf("unknown mode: %q", mode))
	}

	retrieved, err := s.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("mode", string(mode)).Int("sources", len(retrieved.Chunks)).Msg("Generating answer")

	switch mode {
	case models.ModeQuotes:
		quotes, err := s.synth.Quotes(ctx, retrieved.Query, retrieved)
		if err != nil {
			return nil, err
		}
		return &models.Response{Mode: mode, Quotes: quotes}, nil
	default:
		answer, err := s.synth.MapReduce(ctx, retrieved.Query, retrieved)
		if err != nil {
			return nil, err
		}
		return &models.Response{Mode: models.ModeQA, Answer: answer}, nil
	}
}

// Close discards the current document and removes OCR output files
func (s *Session) Close() error {
	s.reset()
	if err := os.RemoveAll(s.workDir); err != nil {
		return eris.Wrap(err, "failed to remove session work dir")
	}
	s.logger.Debug().Msg("Session closed")
	return nil
}

func (s *Session) reset() {
	if s.index != nil {
		if err := s.index.Discard(); err != nil {
			s.logger.Warn().Err(err).Msg("Error discarding index")
		}
	}
	s.index = nil
	s.loaded = nil
}
