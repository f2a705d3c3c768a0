package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")
	log.Info("dropped")
	log.Warn("kept", "request_id", "r1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "voteledger", line["service"])
	assert.Equal(t, "r1", line["request_id"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "debug", "TEXT").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
