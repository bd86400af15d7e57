package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Initialize sets up the global logger writing to stdout.
// Development mode uses the console writer and debug level.
func Initialize(isDevelopment bool) {
	InitializeWithWriter(os.Stdout, isDevelopment)
}

// InitializeWithWriter sets up the global logger on an arbitrary writer
func InitializeWithWriter(out io.Writer, isDevelopment bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	setOutput(consoleOrJSON(out, isDevelopment))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if isDevelopment {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// AttachFile additionally writes JSON logs to a size-rotated file at path.
// The current global level is kept. Close the returned closer on shutdown.
func AttachFile(path string, isDevelopment bool) io.Closer {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	setOutput(zerolog.MultiLevelWriter(consoleOrJSON(os.Stdout, isDevelopment), rotator))
	return rotator
}

func consoleOrJSON(out io.Writer, isDevelopment bool) io.Writer {
	if !isDevelopment {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}
}

func setOutput(output io.Writer) {
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "crewboard").
		Logger()
}

// GetLogger returns a logger with the component field set
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// SetLogLevel sets the global log level. Unknown or empty levels fall back to info.
func SetLogLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	return parsed
}
