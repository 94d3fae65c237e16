package speechactivity

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

var (
	// defaultLoggerImpl is a zerolog instance with console writer
	defaultLoggerImpl = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		color, _ := strconv.ParseBool(os.Getenv("DEBUG_COLORS"))
		w.NoColor = !color
		w.TimeFormat = "2006-01-02 15:04:05.999"
	})).With().Timestamp().Caller().Logger()

	defaultLoggerLevel = zerolog.InfoLevel

	// NewLogger defines function to create logger instance. Debug output of a scope is enabled
	// when the DEBUG environment variable contains a glob matching it, e.g.
	// DEBUG="SpeechActivity*,-DominantSpeakerDetector".
	NewLogger = func(scope string) logr.Logger {
		level := defaultLoggerLevel

		if shouldDebug(scope, os.Getenv("DEBUG")) {
			level = zerolog.TraceLevel
		}

		logger := defaultLoggerImpl.Level(level)

		return zerologr.New(&logger).WithName(scope)
	}
)

func init() {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.999Z07:00"
	zerologr.VerbosityFieldName = ""
}

// shouldDebug reports whether the comma separated glob list in debug enables scope. Later
// patterns win over earlier ones, and a leading '-' disables matching scopes.
func shouldDebug(scope, debug string) bool {
	matched := false

	for _, part := range strings.Split(debug, ",") {
		part := strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		shouldMatch := true
		if part[0] == '-' {
			shouldMatch = false
			part = part[1:]
		}
		if g, err := glob.Compile(part); err == nil && g.Match(scope) {
			matched = shouldMatch
		}
	}

	return matched
}
