package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"pdf-rag/internal/models"
)

func longPage(number int) models.Page {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the river bank. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		} else if i%3 == 0 {
			b.WriteString("\n")
		}
	}
	return models.Page{Number: number, Text: b.String()}
}

func assertOverlap(t *testing.T, chunks []models.Chunk, overlap int) {
	t.Helper()
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if prev.Page != cur.Page {
			continue
		}
		p, c := []rune(prev.Text), []rune(cur.Text)
		if len(p) < overlap || len(c) < overlap {
			t.Fatalf("chunk %d shorter than overlap", i)
		}
		if string(p[len(p)-overlap:]) != string(c[:overlap]) {
			t.Fatalf("chunk %d does not overlap previous chunk by %d characters", i, overlap)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	pages := []models.Page{longPage(1), longPage(2)}

	first, err := Split(pages, 300, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Split(pages, 300, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical chunk sequences")
	}
}

func TestSplitRespectsSizeAndOverlap(t *testing.T) {
	pages := []models.Page{longPage(1), longPage(2), longPage(3)}
	const size, overlap = 400, 80

	chunks, err := Split(pages, size, overlap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 6 {
		t.Fatalf("expected several chunks per page, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.Text)); n > size {
			t.Fatalf("chunk %d has %d characters", i, n)
		}
		if c.Ordinal != i {
			t.Fatalf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if !strings.Contains(pages[c.Page-1].Text, c.Text) {
			t.Fatalf("chunk %d is not a substring of page %d", i, c.Page)
		}
	}
	assertOverlap(t, chunks, overlap)
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	text := strings.Repeat("a", 20) + "\n\n" + strings.Repeat("b", 20) + "\n" + strings.Repeat("c", 20)

	chunks, err := Split([]models.Page{{Number: 1, Text: text}}, 50, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != strings.Repeat("a", 20)+"\n\n" {
		t.Fatalf("expected cut after paragraph break, got %q", chunks[0].Text)
	}
	assertOverlap(t, chunks, 5)
}

func TestSplitFallsBackToWordBoundary(t *testing.T) {
	chunks, err := Split([]models.Page{{Number: 1, Text: "alpha beta gamma delta"}}, 12, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Text != "alpha beta " {
		t.Fatalf("unexpected first chunk %q", chunks[0].Text)
	}
	assertOverlap(t, chunks, 2)
	last := chunks[len(chunks)-1].Text
	if !strings.HasSuffix(last, "delta") {
		t.Fatalf("last chunk should end the page, got %q", last)
	}
}

func TestSplitHardCutsUnbrokenText(t *testing.T) {
	chunks, err := Split([]models.Page{{Number: 1, Text: strings.Repeat("x", 120)}}, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{50, 50, 40}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, n := range want {
		if len(chunks[i].Text) != n {
			t.Fatalf("chunk %d: expected %d characters, got %d", i, n, len(chunks[i].Text))
		}
	}
	assertOverlap(t, chunks, 10)
}

func TestSplitCountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 30)

	chunks, err := Split([]models.Page{{Number: 1, Text: text}}, 20, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if n := len([]rune(c.Text)); n > 20 {
			t.Fatalf("chunk has %d characters", n)
		}
	}
	assertOverlap(t, chunks, 5)
}

func TestSplitKeepsPageAttribution(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "   \n\t"},
		{Number: 2, Text: "Only the second page has text."},
		{Number: 3, Text: ""},
	}

	chunks, err := Split(pages, models.DefaultChunkSize, models.DefaultChunkOverlap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 2 || chunks[0].Text != "Only the second page has text." {
		t.Fatalf("unexpected chunk %+v", chunks[0])
	}
}

func TestSplitNeverCrossesPages(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: strings.Repeat("one ", 30)},
		{Number: 2, Text: strings.Repeat("two ", 30)},
	}

	chunks, err := Split(pages, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if strings.Contains(c.Text, "one") && strings.Contains(c.Text, "two") {
			t.Fatalf("chunk mixes pages: %q", c.Text)
		}
		if strings.Contains(c.Text, "two") && c.Page != 2 {
			t.Fatalf("chunk attributed to page %d: %q", c.Page, c.Text)
		}
	}
}

func TestSplitRejectsInvalidParameters(t *testing.T) {
	cases := []struct{ size, overlap int }{{0, 0}, {100, 100}, {100, 150}, {100, -1}}
	for _, tc := range cases {
		if _, err := Split(nil, tc.size, tc.overlap); !errors.Is(err, models.ErrInvalidChunking) {
			t.Fatalf("size %d overlap %d: expected invalid chunking, got %v", tc.size, tc.overlap, err)
		}
	}
}
