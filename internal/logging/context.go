package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type ctxKey int

const loggerKey ctxKey = iota

// FromContext returns the logger attached with WithLogger. Validation passes,
// scheduler batches and runner workers all log through it; without one the
// process-wide Default is used.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	logger, _ := ctx.Value(loggerKey).(*log.Logger)
	if logger == nil {
		return Default()
	}
	return logger
}

// WithLogger attaches logger to ctx. A nil ctx starts from Background.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}
