package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	dev, err := New("development", "")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))

	_, err = New("production", "loud")
	assert.Error(t, err)
}
