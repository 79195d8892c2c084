package obslog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Debug, Component: "slab", Output: &buf})

	l.Info("cache created", String("cache", "c0"), Uint32("per_objects", 67))

	line := buf.String()
	assert.Contains(t, line, "[INFO ]")
	assert.Contains(t, line, "[slab]")
	assert.Contains(t, line, "cache created")
	assert.Contains(t, line, `cache="c0"`)
	assert.Contains(t, line, "per_objects=67")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Warn, Component: "slab", Output: &buf})

	l.Debug("hidden")
	l.Info("hidden too")
	assert.Empty(t, buf.String())

	l.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLogger_ErrField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Debug, Output: &buf})

	l.Error("refill failed", Err(errors.New("out of frames")))
	assert.Contains(t, buf.String(), `error="out of frames"`)
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Debug, Component: "slab", Output: &buf})

	l.With("diag").Info("scoped")
	assert.Contains(t, buf.String(), "[diag]")
}

func TestLogger_FatalPanics(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Debug, Output: &buf})

	assert.Panics(t, func() { l.Fatal("destroyed cache used") })
	assert.Contains(t, buf.String(), "[FATAL]")
}
