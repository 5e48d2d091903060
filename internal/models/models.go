package models

import (
	"strings"
)

// Page is one page of extracted text, numbered from 1
type Page struct {
	Number int
	Text   string
}

// HasText reports whether the page carries any non-whitespace text
func (p Page) HasText() bool {
	return strings.TrimSpace(p.Text) != ""
}

// Document is the file currently loaded in a session
type Document struct {
	Path  string
	Pages []Page
}

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Text    string
	Page    int
	Ordinal int
}

type ScoredChunk struct {
	Chunk
	Score float32
}

// RetrievalResult holds the chunks returned for one query, most similar first
type RetrievalResult struct {
	Query  string
	Chunks []ScoredChunk
}

// Answer is the output of the map-reduce strategy. Sources are the citations.
type Answer struct {
	Query   string
	Text    string
	Sources RetrievalResult
}

// QuoteList is the raw output of the quote extraction strategy.
// The quotes are not checked against the source chunks.
type QuoteList struct {
	Query   string
	Raw     string
	Sources RetrievalResult
}

// Lines returns the non-empty lines of the model output
func (q QuoteList) Lines() []string {
	var lines []string
	for _, line := range strings.Split(q.Raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Response carries the result of one question; exactly one of Answer and
// Quotes is set, depending on Mode
type Response struct {
	Mode   Mode
	Answer *Answer
	Quotes *QuoteList
}

// Sources returns the chunks the response was grounded in
func (r Response) Sources() RetrievalResult {
	if r.Answer != nil {
		return r.Answer.Sources
	}
	if r.Quotes != nil {
		return r.Quotes.Sources
	}
	return RetrievalResult{}
}

type Mode string

const (
	ModeQA     Mode = "qa"
	ModeQuotes Mode = "quotes"
)

// ParseMode maps a flag value onto a Mode
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeQA, "":
		return ModeQA, true
	case ModeQuotes:
		return ModeQuotes, true
	}
	return "", false
}
