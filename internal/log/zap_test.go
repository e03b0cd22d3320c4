package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")

	zl, err := NewLogger(
		WithLogLevel("warn"),
		WithOutputPaths(out),
		WithFields(zap.String("app", "test")),
	)
	require.NoError(t, err)

	zl.Info("hidden")
	zl.Warn("shown")
	_ = zl.Sync()

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), `"msg":"shown"`)
	assert.Contains(t, string(b), `"app":"test"`)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(WithLogLevel("loud"))
	assert.Error(t, err)
}

func TestNewLogger_ConsoleEncoding(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")

	zl, err := NewLogger(WithEncoding("console"), WithOutputPaths(out))
	require.NoError(t, err)

	zl.Info("plain")
	_ = zl.Sync()

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "plain")
	assert.NotContains(t, string(b), `"msg"`)
}
