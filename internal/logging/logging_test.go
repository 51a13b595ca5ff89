package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New("debug", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "time=")

	_, err = New("chatty", &buf)
	require.Error(t, err)
}

func TestInhibitorSuppress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New("info", &buf)
	require.NoError(t, err)
	in := NewInhibitor(log)

	restore := in.Suppress()
	assert.True(t, in.Suppressed())
	log.Info("hidden")
	log.Warn("shown")

	restore()
	restore()
	assert.False(t, in.Suppressed())
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Info("visible again")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "visible again")
}

func TestInhibitorNested(t *testing.T) {
	t.Parallel()

	log := Discard()
	log.SetLevel(logrus.DebugLevel)
	in := NewInhibitor(log)

	outer := in.Suppress()
	inner := in.Suppress()
	inner()
	assert.Equal(t, logrus.WarnLevel, log.GetLevel(), "inner restore must not reopen")
	outer()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestInhibitorKeepsQuieterLevel(t *testing.T) {
	t.Parallel()

	log := Discard()
	log.SetLevel(logrus.ErrorLevel)
	restore := NewInhibitor(log).Suppress()
	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())
	restore()
	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())
}

func TestNilInhibitor(t *testing.T) {
	t.Parallel()

	var in *Inhibitor
	in.Suppress()()
	assert.False(t, in.Suppressed())
}
