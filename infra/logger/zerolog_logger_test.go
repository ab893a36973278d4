package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "scheduler", "").With(map[string]any{"run_id": "r1"})
	l.Infof("cycle %d", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "cycle 3", entry["message"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "scheduler", "WARN")
	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warnf("shown")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestConfigure(t *testing.T) {
	defer func() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		console.Store(false)
	}()
	require.NoError(t, Configure("warn", "console"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.True(t, console.Load())

	require.NoError(t, Configure("", ""))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.Error(t, Configure("loud", ""))
	assert.Error(t, Configure("", "xml"))
}
