package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.log")

	l := New(path, true)
	l.Info("pipeline completed", zap.String("session_id", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "pipeline completed", entry["message"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewConsoleOnly(t *testing.T) {
	l := New("", false)
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
