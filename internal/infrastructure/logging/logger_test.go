package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)

	dev, err := New(DevelopmentConfig())
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestComponentAndInstallation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{Logger: zap.New(core)}

	base.ForInstallation("inst-1").Component("layout").Info("saved")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "layout", entries[0].LoggerName)
	assert.Equal(t, "inst-1", entries[0].ContextMap()["installation"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
