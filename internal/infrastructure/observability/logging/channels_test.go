package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T) (*ChanneledLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Writer = &buf
	logger, err := NewChanneledLogger(cfg)
	require.NoError(t, err)
	return logger, &buf
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if json.Unmarshal([]byte(line), &rec) == nil {
			out = append(out, rec)
		}
	}
	return out
}

func TestChannelAttribute(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Cart().Info("added")

	recs := lines(buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "cart", recs[0]["channel"])
	assert.Equal(t, "added", recs[0]["msg"])
}

func TestSetChannelLevel(t *testing.T) {
	logger, buf := newBufferLogger(t)

	require.NoError(t, logger.SetChannelLevel(ChannelTheme, slog.LevelError))
	logger.Theme().Info("hidden")
	logger.Cart().Info("shown")
	assert.Len(t, lines(buf), 1)
	assert.Equal(t, "ERROR", logger.GetChannelLevels()["theme"])

	assert.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelInfo))
}

func TestLogAuthOperationMasksUserID(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.LogAuthOperation("login", "admin", "user-123456", false, nil)

	recs := lines(buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "us****56", recs[0]["userId"])
	assert.Equal(t, "ERROR", recs[0]["level"])
}

func TestWithContextAddsRequestID(t *testing.T) {
	logger, buf := newBufferLogger(t)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	logger.WithContext(ChannelHTTP, ctx).Info("done")

	recs := lines(buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-1", recs[0]["requestId"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
