package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

// Start serves HTTP in the background. The returned channel is closed once
// SIGINT, SIGTERM or SIGHUP arrives; event consumers are cancelled at that point.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			fatal("http server stopped", err)
		}
	}()

	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		a.cancel()
		slog.Info("shutdown signal received")
		close(done)
	}()

	return done
}

// Stop drains HTTP, waits for in-flight consumers to finish their current
// email, then releases resources in reverse order of creation.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for consumers to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "consumer exited with error", "error", err)
	}

	for _, c := range slices.Backward(a.closers) {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}
	slog.InfoContext(ctx, "application stopped")
}
