package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := New(Options{Level: "info", JSON: true, Rotate: FileRotate{Filename: file, MaxSizeMB: 1}})
	l.Info("borrow ok")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"borrow ok"`)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New(Options{Level: "loud"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestRedirectStdLog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "std.log")
	l, cleanup := New(Options{Level: "debug", JSON: true, Rotate: FileRotate{Filename: file}})
	undo := RedirectStdLog(l, zapcore.WarnLevel)
	log.Print("slow sql")
	undo()
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "slow sql")
	assert.Contains(t, string(b), `"level":"warn"`)
}
