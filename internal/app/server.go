package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves HTTP in the background and returns a channel that is closed
// once SIGINT, SIGTERM or SIGHUP arrives. A listener failure exits the process.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})
	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		slog.Info("email otp http server listening",
			"address", a.httpServer.Addr,
			"otp_enabled", a.config.GetBool("modules.otp.enabled"),
			"mail_driver", a.config.GetString("mail.driver"),
			"messaging_driver", a.config.GetString("messaging.driver"),
		)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		<-sigCtx.Done()
		stop()
		slog.Info("shutdown signal received")
		close(done)
	}()

	return done
}

// Serve runs the HTTP server on l. The returned channel yields the Serve error
// once the server stops.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)
		errChan <- a.httpServer.Serve(l)
	}()

	return errChan
}

// Stop drains in-flight requests, waits for pending event publishes and then
// runs the closers. Each step is bounded by ctx.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown http server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for pending otp events")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background task failed", "error", err)
	}

	a.release(ctx)

	slog.InfoContext(ctx, "application stopped")
}
