package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("orchestrator", &buf)
	l.Debugw("cluster solved", map[string]any{"cluster_id": 3, "assigned": 12})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orchestrator", entry["component"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "cluster solved", entry["message"])
	assert.EqualValues(t, 3, entry["cluster_id"])
	assert.Contains(t, entry, "time")
}

func TestApplyLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	ApplyLevel("WARN")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	ApplyLevel("bogus")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := NewWithWriter("x", &buf)
	l.Infof("hidden")
	assert.Zero(t, buf.Len())
	l.Errorf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNopLoggerIsCoreNop(t *testing.T) {
	var l Logger = NopLogger{}
	l.Infof("ignored")
}
