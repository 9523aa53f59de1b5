package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.With("service", "StagingOrchestrator").Info("state", "state", "VALIDATING")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "state", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "StagingOrchestrator", fields["service"])
	assert.Equal(t, "VALIDATING", fields["state"])
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l)
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := NewNop()
	assert.Same(t, l, OrNop(l))
}
