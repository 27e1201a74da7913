package helpers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

// TestCtx returns a context carrying a logger that discards output.
func TestCtx() context.Context {
	return logger.ToContext(context.Background(), TestLogger())
}

func TestLogger() *slog.Logger {
	return slog.New(logger.NewTestHandler(slog.LevelDebug))
}
