package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
)

const stageSynthesize = "synthesize"

// Synthesizer turns retrieved chunks into an answer or a list of quotes
type Synthesizer struct {
	llm            llmservice.Completer
	mapConcurrency int
}

func NewSynthesizer(llm llmservice.Completer, mapConcurrency int) *Synthesizer {
	if mapConcurrency <= 0 {
		mapConcurrency = models.DefaultMapConcurrency
	}
	return &Synthesizer{llm: llm, mapConcurrency: mapConcurrency}
}

// MapReduce asks the model about each chunk separately, then combines the
// partial answers with one more call. The retrieved chunks are returned
// unchanged as citations.
func (s *Synthesizer) MapReduce(ctx context.Context, query string, retrieved models.RetrievalResult) (*models.Answer, error) {
	if len(retrieved.Chunks) == 0 {
		return nil, models.NewStageError(stageSynthesize, models.ErrSynthesisFailed, eris.New("no chunks retrieved"))
	}

	mapped := make([]string, len(retrieved.Chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.mapConcurrency)
	for i, c := range retrieved.Chunks {
		g.Go(func() error {
			out, err := s.llm.Complete(gctx, fmt.Sprintf(models.MapPromptTemplate, c.Text, query))
			if err != nil {
				return eris.Wrapf(err, "map step failed for chunk %d", c.Ordinal)
			}
			mapped[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, models.NewStageError(stageSynthesize, models.ErrSynthesisFailed, err)
	}
	log.Debug().Int("parts", len(mapped)).Msg("Map step finished")

	final, err := s.llm.Complete(ctx, fmt.Sprintf(models.ReducePromptTemplate, query, strings.Join(mapped, models.ContextSeparator)))
	if err != nil {
		return nil, models.NewStageError(stageSynthesize, models.ErrSynthesisFailed, eris.Wrap(err, "reduce step failed"))
	}

	return &models.Answer{
		Query:   query,
		Text:    strings.TrimSpace(final),
		Sources: retrieved,
	}, nil
}

// Quotes asks the model for up to three verbatim quotations from the
// retrieved chunks. The output is returned as is; nothing checks that the
// quotes really occur in the chunks.
func (s *Synthesizer) Quotes(ctx context.Context, query string, retrieved models.RetrievalResult) (*models.QuoteList, error) {
	if len(retrieved.Chunks) == 0 {
		return nil, models.NewStageError(stageSynthesize, models.ErrSynthesisFailed, eris.New("no chunks retrieved"))
	}

	texts := make([]string, len(retrieved.Chunks))
	for i, c := range retrieved.Chunks {
		texts[i] = c.Text
	}
	prompt := fmt.Sprintf(models.QuotePromptTemplate, query, strings.Join(texts, models.ContextSeparator))

	out, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, models.NewStageError(stageSynthesize, models.ErrSynthesisFailed, err)
	}
	return &models.QuoteList{Query: query, Raw: strings.TrimSpace(out), Sources: retrieved}, nil
}
