package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	t.Run("writes prefix and level", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("APP", ColorGreen, &buf)
		assert.NoError(t, err)

		l.Info("server started")
		l.Warning("slow subscriber")
		l.Error("redis down")

		out := buf.String()
		assert.Contains(t, out, "[APP]")
		assert.Contains(t, out, "[INFO]")
		assert.Contains(t, out, "server started")
		assert.Contains(t, out, "[WARNING]")
		assert.Contains(t, out, "[ERROR]")
		assert.Contains(t, out, "redis down")
	})

	t.Run("extra fields are appended", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("SESSION-MANAGER", ColorCyan, &buf)
		assert.NoError(t, err)

		l.With("session", "abc").Info("created")
		assert.Contains(t, buf.String(), "session=abc")
	})

	t.Run("empty prefix", func(t *testing.T) {
		_, err := New(" ", ColorGreen, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyPrefix)
	})
}
