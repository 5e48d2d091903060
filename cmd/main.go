package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
	"pdf-rag/internal/ocr"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/report"
	"pdf-rag/internal/tui"
)

const (
	configFilePath = "./configs/config.yaml"
)

func main() {
	configPath := flag.String("config", configFilePath, "Path to the yaml config file")
	filePath := flag.String("file", "", "Path to the PDF document")
	query := flag.String("query", "", "Question to answer; starts the interactive prompt when empty")
	modeFlag := flag.String("mode", string(models.ModeQA), "Answer mode: qa (map-reduce answer with sources) or quotes (exact quotations)")
	htmlOut := flag.String("html", "", "Also write the answer as an html page to this path")
	jsonOut := flag.Bool("json", false, "Print the answer as json instead of markdown")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if *filePath == "" {
		log.Fatal().Msg("Please provide a PDF document using the -file flag")
	}
	mode, ok := models.ParseMode(*modeFlag)
	if !ok {
		log.Fatal().Str("mode", *modeFlag).Msg("Unknown mode, use qa or quotes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *configPath, *filePath, *query, mode, *htmlOut, *jsonOut, *debug); err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}
}

func run(ctx context.Context, configPath, filePath, query string, mode models.Mode, htmlOut string, jsonOut, debug bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing session")
		}
	}()

	summary, err := session.Load(ctx, filePath)
	if err != nil {
		return err
	}
	log.Info().
		Str("state", summary.State.String()).
		Int("pages", summary.Pages).
		Int("pages_with_text", summary.TextPages).
		Int("chunks", summary.Chunks).
		Msg("Document ready")

	if query == "" {
		if !debug {
			// keep log lines from drawing over the interface
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		m := tui.New(ctx, session, filepath.Base(filePath), mode)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}

	resp, err := session.Ask(ctx, query, mode)
	if err != nil {
		return err
	}

	if jsonOut {
		helper.PrettyPrint(os.Stdout, resp)
	} else {
		fmt.Print(report.Markdown(resp))
	}
	if htmlOut != "" {
		if err := report.WriteHTML(htmlOut, resp); err != nil {
			return err
		}
		log.Info().Str("file", htmlOut).Msg("Wrote html report")
	}
	return nil
}

func newSession(cfg *config.Config) (*rag.Session, error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, models.NewStageError("index", models.ErrConfiguration, err)
	}
	completer, err := llmservice.NewCompleter(&cfg.LLM)
	if err != nil {
		return nil, models.NewStageError("synthesize", models.ErrConfiguration, err)
	}

	return rag.NewSession(rag.Deps{
		Extractor: parser.PDFExtractor{},
		Converter: ocr.NewOCRmyPDF(cfg.OCR.Command, cfg.OCR.Args),
		Embedder:  embedder,
		LLM:       completer,
	}, rag.Options{
		ChunkSize:      cfg.RAG.ChunkSize,
		ChunkOverlap:   cfg.RAG.ChunkOverlap,
		TopK:           cfg.RAG.TopK,
		MapConcurrency: cfg.RAG.MapConcurrency,
		WorkDir:        cfg.OCR.WorkDir,
	})
}
