package parser

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// separators in priority order: paragraph break, line break, word boundary.
// When none fits the window the text is cut at the character boundary.
var separators = [][]rune{[]rune("\n\n"), []rune("\n"), []rune(" ")}

// Split cuts every page into chunks of at most chunkSize characters.
// Consecutive chunks of the same page share exactly overlap characters.
// Pages are never merged, so each chunk belongs to exactly one page.
func Split(pages []models.Page, chunkSize, overlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, models.NewStageError("chunk", models.ErrInvalidChunking,
			eris.Errorf("chunk size %d, overlap %d", chunkSize, overlap))
	}

	var chunks []models.Chunk
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		runes := []rune(text)
		for _, span := range splitRunes(runes, chunkSize, overlap) {
			chunks = append(chunks, models.Chunk{
				Text:    string(runes[span[0]:span[1]]),
				Page:    page.Number,
				Ordinal: len(chunks),
			})
		}
	}

	log.Debug().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Split pages into chunks")
	return chunks, nil
}

// splitRunes returns [start, end) spans over text
func splitRunes(text []rune, chunkSize, overlap int) [][2]int {
	var spans [][2]int
	start := 0
	for {
		if len(text)-start <= chunkSize {
			spans = append(spans, [2]int{start, len(text)})
			return spans
		}
		end := cutPoint(text, start, chunkSize, overlap)
		spans = append(spans, [2]int{start, end})
		start = end - overlap
	}
}

// cutPoint picks the end of the chunk starting at start. The end always lies
// in (start+overlap, start+chunkSize] so the next chunk makes progress.
func cutPoint(text []rune, start, chunkSize, overlap int) int {
	limit := start + chunkSize
	for _, sep := range separators {
		for pos := limit - len(sep); pos+len(sep) > start+overlap && pos >= start; pos-- {
			if hasPrefixAt(text, pos, sep) {
				return pos + len(sep)
			}
		}
	}
	return limit
}

func hasPrefixAt(text []rune, pos int, sep []rune) bool {
	if pos+len(sep) > len(text) {
		return false
	}
	for i, r := range sep {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}
