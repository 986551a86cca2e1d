// Package sweeper periodically deletes sessions that have ended, together
// with their reservations.
package sweeper

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"gym_booking/database"
	"gym_booking/locker"
	"gym_booking/notify"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

var ErrAlreadyStarted = errors.New("sweeper already started")

type Result struct {
	Expired      int
	Removed      int
	Reservations int64
	Failed       int
}

type Sweeper struct {
	store       *database.Store
	locker      locker.Locker
	notifier    notify.Notifier
	clock       clockwork.Clock
	interval    time.Duration
	cronExpr    string
	lockTimeout time.Duration
	logger      *log.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

type Option func(*Sweeper)

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCron schedules sweeps on a standard five-field cron expression instead
// of a fixed interval.
func WithCron(expr string) Option {
	return func(s *Sweeper) { s.cronExpr = expr }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Sweeper) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLockTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(store *database.Store, l locker.Locker, clock clockwork.Clock, opts ...Option) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Sweeper{
		store:       store,
		locker:      l,
		notifier:    notify.Nop{},
		clock:       clock,
		interval:    time.Hour,
		lockTimeout: 5 * time.Second,
		logger:      log.New(os.Stderr, "[sweeper] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs a sweep immediately and then on the configured schedule. Runs
// never overlap; a tick that arrives while a sweep is running is skipped.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return ErrAlreadyStarted
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return err
	}

	definition := gocron.DurationJob(s.interval)
	schedule := s.interval.String()
	if s.cronExpr != "" {
		definition = gocron.CronJob(s.cronExpr, false)
		schedule = s.cronExpr
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, err = scheduler.NewJob(
		definition,
		gocron.NewTask(func() {
			res := s.RunOnce(ctx)
			if res.Expired > 0 {
				s.logger.Printf("removed %d/%d expired sessions (%d reservations, %d failed)",
					res.Removed, res.Expired, res.Reservations, res.Failed)
			}
		}),
		gocron.WithName("session-sweeper"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return err
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.cancel = cancel
	s.logger.Printf("started (schedule %s)", schedule)
	return nil
}

// Stop cancels an in-flight sweep between sessions and waits for it to return.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return nil
	}
	s.cancel()
	err := s.scheduler.Shutdown()
	s.scheduler = nil
	s.cancel = nil
	s.logger.Println("stopped")
	return err
}

// RunOnce deletes every session whose end time is before now. Failures are
// logged and counted; a failed session is retried on the next run.
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	var res Result
	now := s.clock.Now()

	ids, err := s.store.FindExpiredSessionIDs(ctx, now)
	if err != nil {
		s.logger.Printf("list expired sessions: %v", err)
		return res
	}
	res.Expired = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		deleted, removed, err := s.sweepOne(ctx, id, now)
		if err != nil {
			res.Failed++
			s.logger.Printf("delete session %d: %v", id, err)
			continue
		}
		if !deleted {
			continue
		}
		res.Removed++
		res.Reservations += removed
		if err := s.notifier.Publish(ctx, notify.Event{Type: notify.EventRemoved, SessionID: id, At: now}); err != nil {
			s.logger.Printf("publish removal of session %d: %v", id, err)
		}
	}
	return res
}

func (s *Sweeper) sweepOne(ctx context.Context, id uint, now time.Time) (bool, int64, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, id)
	if err != nil {
		return false, 0, err
	}
	defer unlock()
	return s.store.DeleteExpiredSessionCascade(ctx, id, now)
}
