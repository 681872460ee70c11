package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logLevelMatches = map[string]zerolog.Level{
	"NONE":  zerolog.Disabled,
	"TRACE": zerolog.TraceLevel,
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
}

// ParseLevel maps a config level onto zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if l, ok := logLevelMatches[strings.ToUpper(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

func configureConsoleWriter(out io.Writer) {
	if f, ok := out.(*os.File); ok && isTerminalAttached(f) {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: "2006-01-02 15:04:05",
		})
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func isTerminalAttached(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) && runtime.GOOS != "windows"
}

// Setup configures the global logger. The returned func closes the log
// file, if one was opened, and is never nil.
func Setup(level, file string) (func(), error) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	if file == "" {
		configureConsoleWriter(os.Stdout)
		return func() {}, nil
	}
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return func() {}, err
	}
	configureConsoleWriter(f)
	return func() { _ = f.Close() }, nil
}

// Enabled checks if a specific logging level is enabled
func Enabled(level zerolog.Level) bool {
	return level >= zerolog.GlobalLevel()
}
