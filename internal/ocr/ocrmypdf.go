package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// OCRmyPDF runs the ocrmypdf command line tool
type OCRmyPDF struct {
	Command string
	Args    []string
}

func NewOCRmyPDF(command string, args []string) *OCRmyPDF {
	if command == "" {
		command = "ocrmypdf"
	}
	return &OCRmyPDF{Command: command, Args: args}
}

func (o *OCRmyPDF) Convert(ctx context.Context, in, out string) error {
	args := append(append([]string{}, o.Args...), in, out)
	cmd := exec.CommandContext(ctx, o.Command, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	log.Debug().Str("command", o.Command).Strs("args", args).Msg("Starting OCR converter")
	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(output.String())
		if diag == "" {
			return eris.Wrapf(err, "%s failed", o.Command)
		}
		return eris.Wrapf(err, "%s failed: %s", o.Command, diag)
	}
	return nil
}
