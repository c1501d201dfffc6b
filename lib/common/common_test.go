package common

import (
	"bytes"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	for input, want := range map[string]logger.LogLevel{
		"debug": logger.DEBUG,
		"INFO":  logger.INFO,
		"warn":  logger.WARNING,
		"error": logger.ERROR,
	} {
		got, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Error(t, InitLoggers("verbose"))
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	old := logOutput
	logOutput = &buf
	defer func() { logOutput = old }()

	l := CreateLogger("sector")
	l.Debugf("hidden")
	l.SetLevel(logger.DEBUG)
	l.Debugf("resized %d -> %d", 4, 8)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "DEBUG | sector   | resized 4 -> 8")
}

func TestConfigString(t *testing.T) {
	sim := &SimConfig{Policy: "tight", Capacity: -1, Ops: "push:3", BudgetBytes: 2048, LogLevel: "info"}
	out := sim.String()
	assert.Contains(t, out, "CONTAINER")
	assert.Contains(t, out, "tight")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "2.0 KiB")

	bench := &BenchConfig{Policies: []string{"normal", "tight"}, Size: 100, LogLevel: "warn"}
	out = bench.String()
	assert.Contains(t, out, "normal, tight")
	assert.NotContains(t, out, "CSV Output")
}
