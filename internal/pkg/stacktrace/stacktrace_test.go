package stacktrace

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nested() []string {
	return Capture(0)
}

func TestCapture(t *testing.T) {
	paths := nested()

	require.GreaterOrEqual(t, len(paths), 2)
	assert.True(t, strings.HasPrefix(paths[0], "internal/pkg/stacktrace/stacktrace_test.go:"), paths[0])
	assert.True(t, strings.HasPrefix(paths[1], "internal/pkg/stacktrace/stacktrace_test.go:"), paths[1])
	for _, p := range paths {
		assert.NotContains(t, p, "runtime/")
	}
}

func TestCaptureSkip(t *testing.T) {
	assert.Len(t, Capture(0), len(nested())-1)
}

func TestAttr(t *testing.T) {
	attr := Attr(0)

	assert.Equal(t, "stack", attr.Key)
	assert.Equal(t, slog.KindAny, attr.Value.Kind())
}

func TestAttrWithoutInternalFrames(t *testing.T) {
	// Skipping past every frame leaves nothing internal, so the full stack is used.
	attr := Attr(maxFrames)

	assert.Equal(t, slog.KindString, attr.Value.Kind())
	assert.Contains(t, attr.Value.String(), "goroutine")
}
