package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestModuleLoggerFieldsAndModules(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelDebug).Module("datastore").Module("repository")

	log.With(String("entity", "SpinState")).Info("created", Int("id", 3))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "datastore.repository", lines[0]["module"])
	assert.Equal(t, "SpinState", lines[0]["entity"])
	assert.InDelta(t, 3, lines[0]["id"], 0)
	assert.Equal(t, "created", lines[0]["msg"])
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Log(LogLevelInfo, "hidden")
	log.Warn("shown")
	log.Error("shown", Error(errors.New("boom")))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestWithContextAddsTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo)

	ctx := WithTraceID(context.Background(), "abc-123")
	log.WithContext(ctx).Info("request")
	log.WithContext(context.Background()).Info("no trace")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc-123", lines[0]["trace_id"])
	assert.NotContains(t, lines[1], "trace_id")
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewSlogLogger(buf, LogLevelInfo)
	_ = parent.With(String("child", "yes"))

	parent.Info("parent")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "child")
}

func TestTextHandlerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	h := newTextHandler(buf, slog.LevelInfo, time.UTC)
	l := slog.New(h)

	l.Info("catalogue entry created", slog.String("module", "api"), slog.String("entity", "Base Method"))

	out := buf.String()
	assert.Contains(t, out, "INFO  [api] catalogue entry created")
	assert.Contains(t, out, `entity="Base Method"`)
	assert.True(t, strings.HasPrefix(out, "["))
}

func TestCentralLoggerWritesJSONFile(t *testing.T) {
	path := t.TempDir() + "/logs/app.log"
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "debug",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "debug"},
		ModuleOutputs: map[string]ModuleOutput{
			"access":   {Enabled: false},
			"identity": {Enabled: false},
		},
	})
	require.NoError(t, err)

	cl.Module("seed").Debug("imported", Int("rows", 5))
	require.NoError(t, cl.Flush())
	require.NoError(t, cl.Close())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, data, `"module":"seed"`)
	assert.Contains(t, data, `"rows":5`)
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
}

func TestGormAdapterLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := NewGormLoggerAdapter(NewSlogLogger(buf, LogLevelInfo), 10*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	adapter.Trace(context.Background(), time.Now(), sql, nil)
	adapter.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	adapter.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "query error", lines[0]["msg"])
	assert.Equal(t, "slow query", lines[1]["msg"])
}

func TestEchoAdapterRoutesToLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := NewEchoLoggerAdapter(NewSlogLogger(buf, LogLevelInfo))

	adapter.Infof("listening on %s", ":8080")
	adapter.Debug("hidden")
	assert.Panics(t, func() { adapter.Panic("bad") })

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "listening on :8080", lines[0]["msg"])
}
