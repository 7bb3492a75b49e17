package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))

	return entry
}

func TestErrorWithLocationTag(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newWithWriter("info", buf)

	// a tag holding a verb must be written as is
	l.Error(errors.New("s3 down"), "restapi - v1 - upload - 100%s")

	entry := lastEntry(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "s3 down", entry["error"])
	assert.Equal(t, "restapi - v1 - upload - 100%s", entry["message"])
}

func TestErrorFormats(t *testing.T) {
	tests := []struct {
		name    string
		message interface{}
		args    []interface{}
		want    string
	}{
		{"bare error", errors.New("boom"), nil, "boom"},
		{"error with format", errors.New("boom"), []interface{}{"key %s", "1-a.png"}, "key 1-a.png"},
		{"string", "relay - PublishBatch", nil, "relay - PublishBatch"},
		{"string with args", "published %d events", []interface{}{3}, "published 3 events"},
		{"unknown type", 42, nil, "error message 42 has unknown type int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := newWithWriter("info", buf)

			l.Error(tt.message, tt.args...)

			assert.Equal(t, tt.want, lastEntry(t, buf)["message"])
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newWithWriter("error", buf)

	l.Info("started on %s", ":8080")
	l.Warn("slow")
	assert.Zero(t, buf.Len())

	l.Error("failed")
	assert.Equal(t, "failed", lastEntry(t, buf)["message"])

	l = newWithWriter("info", buf)
	l.Info("started on %s", ":8080")
	assert.Equal(t, "started on :8080", lastEntry(t, buf)["message"])
}
