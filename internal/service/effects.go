package service

import (
	"context"
	"io"
	"log/slog"

	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/notify"
)

// Notifier hands messages to the delivery layer without waiting for them.
type Notifier interface {
	Dispatch(msgs ...*notify.Message)
}

// DashboardCache holds the last computed dashboard.
type DashboardCache interface {
	Get(ctx context.Context, dst any) (bool, error)
	Set(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

// Effects are the side effects a mutation triggers after its transaction commits.
// Every field is optional.
type Effects struct {
	Notifier Notifier
	Cache    DashboardCache
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func (e Effects) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// committed invalidates the dashboard and dispatches msgs. Neither step can fail the mutation.
func (e Effects) committed(ctx context.Context, msgs ...*notify.Message) {
	if e.Cache != nil {
		if err := e.Cache.Invalidate(ctx); err != nil {
			e.logger().WarnContext(ctx, "dashboard cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	if e.Notifier != nil && len(msgs) > 0 {
		e.Notifier.Dispatch(msgs...)
	}
}
