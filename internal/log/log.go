// Package log is the process-wide structured logger.
package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	cblog "github.com/charmbracelet/log"
)

var logger = cblog.NewWithOptions(os.Stderr, cblog.Options{
	ReportTimestamp: true,
	TimeFormat:      time.TimeOnly,
	Prefix:          "sway-mirror",
})

// SetLevel accepts debug, info, warn, error or fatal.
func SetLevel(level string) error {
	lvl, err := cblog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

func Debug(msg any, keyvals ...any) { logger.Debug(msg, keyvals...) }
func Info(msg any, keyvals ...any)  { logger.Info(msg, keyvals...) }
func Warn(msg any, keyvals ...any)  { logger.Warn(msg, keyvals...) }
func Error(msg any, keyvals ...any) { logger.Error(msg, keyvals...) }
func Fatal(msg any, keyvals ...any) { logger.Fatal(msg, keyvals...) }

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Fatalf(format string, args ...any) { logger.Fatalf(format, args...) }
