package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"pdf-rag/internal/models"
)

// Markdown renders a response with its citations
func Markdown(resp *models.Response) string {
	return render(resp, blockquote)
}

// render writes the response as markdown, formatting each cited chunk with cite
func render(resp *models.Response, cite func(string) string) string {
	var b strings.Builder
	switch {
	case resp.Answer != nil:
		fmt.Fprintf(&b, "## Question\n\n%s\n\n## Answer\n\n%s\n\n", resp.Answer.Query, resp.Answer.Text)
	case resp.Quotes != nil:
		fmt.Fprintf(&b, "## Question\n\n%s\n\n## Exact Quotes\n\n%s\n\n", resp.Quotes.Query, resp.Quotes.Raw)
	}

	sources := resp.Sources()
	if len(sources.Chunks) == 0 {
		return b.String()
	}
	b.WriteString("## Sources\n\n")
	for i, c := range sources.Chunks {
		fmt.Fprintf(&b, "**%d. Page %d** (similarity %.3f)\n\n", i+1, c.Page, c.Score)
		b.WriteString(cite(c.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// HTML renders a response as an html fragment. Cited chunks are shown
// verbatim in preformatted blocks.
func HTML(resp *models.Response) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	// citations go in as code blocks so goldmark keeps them literal
	if err := md.Convert([]byte(render(resp, fenced)), &buf); err != nil {
		return "", eris.Wrap(err, "failed to render html")
	}
	return buf.String(), nil
}

// WriteHTML writes a standalone html page for resp to path
func WriteHTML(path string, resp *models.Response) error {
	body, err := HTML(resp)
	if err != nil {
		return err
	}
	page := "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>PDF assistant</title></head><body>\n" +
		body + "</body></html>\n"
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func blockquote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// fenced wraps text in a backtick fence longer than any backtick run inside it
func fenced(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", max(3, longest+1))
	return fence + "\n" + strings.TrimRight(text, "\n") + "\n" + fence
}
