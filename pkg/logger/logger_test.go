package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogInfo_DebugMode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithLogger(zap.New(core))

	assert.False(t, l.DebugMode())
	l.EnableDebugMode()
	assert.True(t, l.DebugMode())
	l.DisableDebugMode()
	assert.False(t, l.DebugMode())

	l.Info("hello", zap.String("k", "v"))
	l.Errorf("boom", assert.AnError)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "v", entries[0].ContextMap()["k"])
	assert.Contains(t, entries[1].Message, "boom")
}

func TestLogInfo_With(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewWithLogger(zap.New(core)).With(zap.String("conversation", "c1"))

	l.Warn("swarm failed")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "c1", entries[0].ContextMap()["conversation"])
}

func TestSetNewNop(t *testing.T) {
	SetNewNop()
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Log.Info("discarded") })
}
