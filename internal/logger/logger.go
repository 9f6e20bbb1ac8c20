// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a go-flags option group shared by all binaries.
type Logger struct {
	Level      string `long:"log-level"       env:"LOG_LEVEL"       description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" choice:"panic" default:"info"`
	Format     string `long:"log-format"      env:"LOG_FORMAT"      description:"Log output format" choice:"console" choice:"json" default:"console"`
	File       string `long:"log-file"        env:"LOG_FILE"        description:"Also write JSON logs to this file (rotated)"`
	MaxSize    int    `long:"log-max-size"    env:"LOG_MAX_SIZE"    description:"Maximum log file size in MB before rotation" default:"64"`
	MaxBackups int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS" description:"Rotated log files to keep" default:"3"`
	NoColor    bool   `long:"log-no-color"    env:"LOG_NO_COLOR"    description:"Disable colored console output"`
}

// Setup applies the options to zerolog's global logger.
func (l Logger) Setup() {
	zerolog.SetGlobalLevel(ParseLevel(l.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = zerolog.New(l.Writer()).With().Timestamp().Logger()
}

// Writer builds the output writer: console or JSON on stderr, plus an
// optional rotated file.
func (l Logger) Writer() io.Writer {
	var out io.Writer = os.Stderr
	if strings.EqualFold(l.Format, "console") || l.Format == "" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    l.NoColor,
			TimeFormat: time.DateTime,
		}
	}

	if l.File == "" {
		return out
	}

	file := &lumberjack.Logger{
		Filename:   l.File,
		MaxSize:    l.MaxSize, // MB
		MaxBackups: l.MaxBackups,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(out, file)
}

// ParseLevel maps a level name to zerolog, falling back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
