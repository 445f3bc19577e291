package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerTo(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.WithField("mode", "tail-batch").Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "tail-batch", entry["mode"])
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(Config{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
