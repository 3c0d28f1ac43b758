// README: Root zerolog logger setup.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the service-wide logger. Development gets a human-readable
// console writer at debug level; everything else logs JSON at info.
func Setup(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(zerolog.DebugLevel)
	} else {
		logger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	}

	return logger.With().Timestamp().Str("service", "baekend").Logger()
}
