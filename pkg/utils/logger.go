package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLogFile is where the rotating log lives unless configured otherwise.
const DefaultLogFile = ".goalview/goalview.log"

// Logger writes goalview diagnostics to a rotating log file.
type Logger struct {
	logger        *log.Logger
	jsonMode      bool
	correlationID string
}

var (
	globalLogger *Logger
	once         sync.Once
	logFilename  = DefaultLogFile
)

// SetLogFile changes the file used by GetLogger. It only has an effect
// before the first GetLogger call.
func SetLogFile(path string) {
	if path != "" {
		logFilename = path
	}
}

// GetLogger returns the singleton instance of Logger.
// It initializes the logger with a file handler that rotates logs.
func GetLogger() *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   logFilename,
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
		}
	})
	if os.Getenv("GOALVIEW_JSON_LOGS") == "1" {
		globalLogger.jsonMode = true
	}
	if cid := os.Getenv("GOALVIEW_CORRELATION_ID"); cid != "" {
		globalLogger.correlationID = cid
	}
	return globalLogger
}

// NewLogger builds a non-global logger on top of w. Tests and embedders use it
// to keep output away from the rotating file.
func NewLogger(w io.Writer, jsonMode bool) *Logger {
	return &Logger{logger: log.New(w, "", 0), jsonMode: jsonMode}
}

// SetJSON toggles JSON line output.
func (w *Logger) SetJSON(on bool) {
	w.jsonMode = on
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if logFile, ok := w.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{"level": "info", "msg": message, "cid": w.correlationID})
		return
	}
	w.logger.Print(message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	if w.jsonMode {
		w.Log(fmt.Sprintf(format, v...))
		return
	}
	w.logger.Printf(format, v...)
}

// LogError logs an error, including its kind when it is a StructuredError.
func (w *Logger) LogError(err error) {
	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{
			"level": "error",
			"error": err.Error(),
			"kind":  string(KindOf(err)),
			"cid":   w.correlationID,
		})
		return
	}
	w.logger.Printf("Error: %s", FormatError(err))
}

// LogDiscard records a payload dropped as stale.
func (w *Logger) LogDiscard(channel, method string, err error) {
	w.Logf("Discarded %s/%s: %v", channel, method, err)
}
