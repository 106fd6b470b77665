// Package worker holds the background maintenance loops: return accrual
// on locked funds, expired OTP purging, and stale deposit expiry. Each
// loop fires on a standard cron schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// A task reports how many rows it touched.
type task func(ctx context.Context, now time.Time) (int64, error)

type Loop struct {
	name   string
	sched  cron.Schedule
	run    task
	logger *slog.Logger
}

func NewLoop(name, cronExpr string, run task, logger *slog.Logger) (*Loop, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", cronExpr, err)
	}
	return &Loop{
		name:   name,
		sched:  sched,
		run:    run,
		logger: logger.With("component", "worker", "loop", name),
	}, nil
}

func (l *Loop) Start(ctx context.Context) {
	l.logger.Info("worker loop started", "next_run", l.sched.Next(time.Now()))

	for {
		timer := time.NewTimer(time.Until(l.sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("worker loop shut down")
			return
		case fired := <-timer.C:
			l.runOnce(ctx, fired)
		}
	}
}

func (l *Loop) runOnce(ctx context.Context, now time.Time) {
	n, err := l.run(ctx, now)
	if err != nil {
		l.logger.Error("worker task failed", "error", err)
		return
	}
	if n > 0 {
		l.logger.Info("worker task done", "affected", n)
	}
}
