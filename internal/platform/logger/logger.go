package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger stamped with the service and worker identity
// so log lines from the two services can be told apart in a shared pipeline.
func New(service, workerID string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With(
		"service", service,
		"worker_id", workerID,
	)
}
