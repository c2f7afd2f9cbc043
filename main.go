// Command emailotp serves the email one-time passcode API.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/emailotp/internal/app"
)

// shutdownTimeout bounds draining requests and flushing pending otp events.
const shutdownTimeout = 10 * time.Second

func main() {
	a, err := app.New()
	if err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}
	<-a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Stop(ctx)
}
