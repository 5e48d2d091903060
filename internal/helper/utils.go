package helper

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", eris.Wrap(err, "failed to generate UUID")
	}
	return id.String(), nil
}

// pretty print
func PrettyPrint(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
	}
}
