package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Development environments get a
// human readable console writer, everything else logs JSON.
func Setup(env string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "DEV" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().
			Level(zerolog.DebugLevel)
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}
