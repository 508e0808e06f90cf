// Package logging configures the logrus logger used by the CLI and the
// service layer. Secrets never reach a log line unredacted.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the named level.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Mask replaces any non-empty secret.
const Mask = "[REDACTED]"

// Redact hides value completely. Passwords are short, so no part of
// them is kept. An empty value stays empty.
func Redact(value string) string {
	if value == "" {
		return ""
	}
	return Mask
}
