// ABOUTME: Logger setup for all AuStream components
// ABOUTME: Builds per-module zerolog loggers with level overrides from config
package app

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger is the root logger all component loggers derive from.
var Logger zerolog.Logger

// per-module level overrides, filled from the "log" config section
var modules = map[string]string{
	"format": "",
	"level":  "info",
	"output": "stderr",
}

// GetLogger returns a logger for the named module, honoring a per-module
// level override from the "log" config section.
func GetLogger(module string) zerolog.Logger {
	logger := Logger.With().Str("mod", module).Logger()

	if s, ok := modules[module]; ok {
		if lvl, err := zerolog.ParseLevel(s); err == nil {
			return logger.Level(lvl)
		}
	}

	return logger
}

// InitLogger configures the root logger. Supported:
// - output: stderr, stdout
// - format: empty (autodetect color), color, text, json
// - level:  trace, debug, info, warn, error...
func InitLogger() {
	var cfg struct {
		Mod map[string]string `yaml:"log"`
	}

	cfg.Mod = modules // defaults

	LoadConfig(&cfg)

	var writer io.Writer

	switch modules["output"] {
	case "stdout":
		writer = os.Stdout
	default:
		writer = os.Stderr
	}

	if format := modules["format"]; format != "json" {
		console := &zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05.000"}

		switch format {
		case "text":
			console.NoColor = true
		case "color":
			console.NoColor = false
		default:
			console.NoColor = !isatty.IsTerminal(writer.(*os.File).Fd())
		}

		writer = console
	}

	lvl, err := zerolog.ParseLevel(modules["level"])
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	Logger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
