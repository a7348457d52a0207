// Package stacktrace condenses panic stacks to the frames that belong to this module.
package stacktrace

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

const (
	modulePath = "github.com/bridj/tripmailer/"
	maxFrames  = 64
)

// Capture returns "internal/<path>.go:<line>" for each frame of this module's internal
// packages on the calling goroutine, innermost first. skip counts frames above the
// caller of Capture.
func Capture(skip int) []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var paths []string
	for {
		f, more := frames.Next()
		if rel, ok := strings.CutPrefix(f.Function, modulePath); ok && strings.HasPrefix(rel, "internal/") {
			file := f.File
			if i := strings.LastIndex(file, "/internal/"); i >= 0 {
				file = file[i+1:]
			}
			paths = append(paths, file+":"+strconv.Itoa(f.Line))
		}
		if !more {
			break
		}
	}

	return paths
}

// Attr is a "stack" log attribute holding Capture's frames, or the full goroutine
// stack when none of them are internal.
func Attr(skip int) slog.Attr {
	if paths := Capture(skip + 1); len(paths) > 0 {
		return slog.Any("stack", paths)
	}

	return slog.String("stack", string(debug.Stack()))
}
