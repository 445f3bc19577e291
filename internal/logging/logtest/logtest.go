// Package logtest provides loggers for tests.
package logtest

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cnclabs/kgfeed/internal/logging"
)

type writer struct {
	t testing.TB
}

func (w writer) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// New returns a debug logger whose output goes to t.Log
func New(t testing.TB) *logrus.Logger {
	logger, err := logging.NewLoggerTo(logging.Config{Level: "debug", DisableColors: true}, writer{t: t})
	if err != nil {
		t.Fatalf("test logger: %v", err)
	}
	return logger
}
