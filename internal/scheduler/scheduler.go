package scheduler

import (
	"context"
	"log/slog"
	"time"

	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/commands"

	"github.com/go-co-op/gocron/v2"
)

const (
	JobSweep = "sweep-expired-holds"
	JobPurge = "purge-closed-holds"
	JobRelay = "relay-outbox"
)

// Scheduler runs the background maintenance jobs of the reservation service.
type Scheduler struct {
	inner  gocron.Scheduler
	expiry commands.ExpiryCommands
	outbox commands.OutboxCommands
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the jobs without starting them. A nil locker runs every job locally.
func New(
	cfg config.Config,
	expiry commands.ExpiryCommands,
	outbox commands.OutboxCommands,
	locker gocron.Locker,
	logger *slog.Logger,
) (*Scheduler, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithLogger(logger),
		gocron.WithStopTimeout(10 * time.Second),
	}
	if locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(locker))
	}

	inner, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		inner:  inner,
		expiry: expiry,
		outbox: outbox,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(ctx context.Context) error
	}{
		{name: JobSweep, interval: cfg.Sweeper.Interval, run: s.sweep},
		{name: JobPurge, interval: cfg.Sweeper.PurgeInterval, run: s.purge},
		{name: JobRelay, interval: cfg.Outbox.RelayInterval, run: s.relay},
	}
	for _, j := range jobs {
		if j.interval <= 0 {
			logger.Info("scheduled job disabled", slog.String("job", j.name))
			continue
		}
		if _, err := inner.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(s.runner(j.name, j.interval, j.run)),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			cancel()
			_ = inner.Shutdown()
			return nil, errs.Wrap(err, "failed to register job "+j.name)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.inner.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.inner.Jobs())))
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.inner.Shutdown(); err != nil {
		return errs.Wrap(err, "failed to stop scheduler")
	}
	return nil
}

// runner bounds each run by its interval so a stuck cycle cannot starve the next one.
func (s *Scheduler) runner(name string, interval time.Duration, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, interval)
		defer cancel()

		if err := run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled job failed",
				slog.String("job", name),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) error {
	_, err := s.expiry.SweepDue(ctx)
	return err
}

func (s *Scheduler) purge(ctx context.Context) error {
	_, err := s.expiry.PurgeTerminal(ctx)
	return err
}

func (s *Scheduler) relay(ctx context.Context) error {
	res, err := s.outbox.Relay(ctx)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		s.logger.WarnContext(ctx, "outbox relay incomplete",
			slog.Int("published", res.Published),
			slog.Int("failed", res.Failed),
			slog.Int("deferred", res.Deferred))
	}
	return nil
}
