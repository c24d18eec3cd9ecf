// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embedded as a go-flags group in every binary.
type Logger struct {
	Level   string `long:"log-level"    env:"LOG_LEVEL"    description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format  string `long:"log-format"   env:"LOG_FORMAT"   description:"Log format" choice:"console" choice:"json" default:"console"`
	NoColor bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colored console output"`
}

// Setup applies the options to the global logger.
func (l *Logger) Setup() {
	l.setup(os.Stderr)
}

func (l *Logger) setup(out io.Writer) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.DurationFieldUnit = time.Millisecond

	if l.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    l.NoColor,
		TimeFormat: time.DateTime,
	}).With().Timestamp().Logger()
}
