package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileName is the name of the log file inside the state directory
const LogFileName = "dotsync.log"

var (
	fileMu sync.Mutex
	// file is the log file opened by the last SetupLogger call
	file *os.File
)

// SetupLogger configures the global logger based on verbosity level.
// Human readable lines go to stderr and JSON lines are appended to the log
// file. Calling it again replaces the previous configuration.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	// Colors only when stderr is a terminal and NO_COLOR is unset
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stderr.Fd()),
	}
	writers := []io.Writer{consoleWriter}

	logPath := getLogFilePath()
	f, err := setupLogFile(logPath)
	if err == nil {
		writers = append(writers, f)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	swapLogFile(f)

	// Reported through the new logger so it reaches the console
	if err != nil {
		log.Warn().Err(err).Str("path", logPath).Msg("Failed to create log file, logging to console only")
	}

	// Caller information at debug and trace levels
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logPath).Msg("Logger initialized")
}

// levelFor maps the -v count to a level: none is warn, -vvv and up is trace
func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// swapLogFile installs f as the current log file and closes the previous one
func swapLogFile(f *os.File) {
	fileMu.Lock()
	defer fileMu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
}

// getLogFilePath returns the path to the log file.
// DOTSYNC_STATE_DIR wins, then XDG_STATE_HOME, then ~/.local/state/dotsync/
func getLogFilePath() string {
	if dir := os.Getenv(paths.EnvDotsyncStateDir); dir != "" {
		return filepath.Join(dir, LogFileName)
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Last resort: the working directory
			return LogFileName
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "dotsync", LogFileName)
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Append mode, earlier runs stay in the same file
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogOperationStart logs the start of an engine operation and returns a
// function that logs its completion with the elapsed time
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
