package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/dialog"
	"github.com/m3rciful/shopbot/internal/notify"
	"github.com/m3rciful/shopbot/internal/orders"
)

const component = "jobs"

const (
	defaultSweepSpec  = "*/5 * * * *"
	defaultDigestSpec = "0 9 * * *"
)

// Options configures the background job scheduler.
type Options struct {
	Dialogs   *dialog.Manager
	DialogTTL time.Duration
	SweepSpec string

	Orders     *orders.Service
	Notifier   *notify.Operator
	DigestSpec string
}

// Scheduler owns the cron runner for periodic maintenance: expiring stale
// dialog sessions and sending the daily pending-orders digest.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the configured jobs. Jobs missing their dependencies are
// skipped silently, so a bot without an operator chat simply has no digest.
func New(opts Options) (*Scheduler, error) {
	c := cron.New()

	if opts.Dialogs != nil && opts.DialogTTL > 0 {
		spec := opts.SweepSpec
		if spec == "" {
			spec = defaultSweepSpec
		}
		if _, err := c.AddFunc(spec, func() {
			sweepSessions(opts.Dialogs, opts.DialogTTL)
		}); err != nil {
			return nil, err
		}
	}

	if opts.Orders != nil && opts.Notifier != nil {
		spec := opts.DigestSpec
		if spec == "" {
			spec = defaultDigestSpec
		}
		if _, err := c.AddFunc(spec, func() {
			sendDigest(opts.Orders, opts.Notifier)
		}); err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(logger.Background(), component, "scheduler.started",
		slog.Int("count", len(s.cron.Entries())),
	)
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info(logger.Background(), component, "scheduler.stopped")
}

func sweepSessions(dialogs *dialog.Manager, ttl time.Duration) {
	expired := dialogs.ExpireIdle(ttl)
	if expired > 0 {
		logger.Info(logger.Background(), "service.dialog", "session.expired",
			slog.Int("expired", expired),
		)
	}
}

func sendDigest(svc *orders.Service, notifier *notify.Operator) {
	ctx, cancel := context.WithTimeout(logger.Background(), 30*time.Second)
	defer cancel()

	pending, err := svc.PendingCount(ctx)
	if err != nil {
		logger.Error(ctx, component, "digest.count_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	if err := notifier.PendingDigest(ctx, pending); err != nil {
		logger.Warn(ctx, component, "digest.send_failed",
			slog.String("err", err.Error()),
		)
	}
}
