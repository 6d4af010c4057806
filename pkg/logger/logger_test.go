package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tradedesk.log")
	cfg := DefaultConfig()
	cfg.Console = false
	cfg.Level = "debug"
	cfg.OutputFile = path
	require.NoError(t, Init(cfg))

	WithComponent("test").Info("hello")
	Debugf("value=%d", 7)
	logrus.WithField("global", true).Warn("via global")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "component=test")
	assert.Contains(t, s, "value=7")
	assert.Contains(t, s, "via global")
	assert.Equal(t, path, CurrentLogFile())
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
}

func TestInitBadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(Config{Level: "loud"}))
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	assert.Empty(t, CurrentLogFile())
}
