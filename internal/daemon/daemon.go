package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/notify"
	"github.com/esemi/travian-manager/internal/portal"
	"github.com/esemi/travian-manager/internal/raid"
	"github.com/esemi/travian-manager/internal/schedule"
	"github.com/esemi/travian-manager/internal/storage"
)

// State represents the daemon's operational state
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Daemon owns the portal session and drives one feature pipeline per cycle
type Daemon struct {
	cfg       *config.Config
	cfgPath   string
	portal    Portal
	pid       *PIDFile
	logger    *log.Logger
	notifier  *notify.Manager
	cycles    *storage.CycleStore
	journal   raid.Journal
	rnd       *rand.Rand
	now       func() time.Time
	wait      func(ctx context.Context, d time.Duration) error
	noClose   bool
	maxCycles int

	state   schedule.State
	alerted map[string]bool // incoming attack ids already reported
	mu      sync.RWMutex    // protects cfg
}

// New creates a daemon over an unauthenticated portal session
func New(cfg *config.Config, p Portal, opts ...Option) *Daemon {
	d := &Daemon{
		cfg:      cfg,
		portal:   p,
		logger:   log.New(io.Discard, "", 0),
		notifier: notify.NewManager(),
		rnd:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:      time.Now,
		alerted:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.wait == nil {
		d.wait = d.sleep
	}
	return d
}

// Config returns the active configuration
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Cycle returns the number of the last started cycle
func (d *Daemon) Cycle() int {
	return d.state.Cycle
}

// Start logs in and runs cycles until ctx is cancelled, a signal arrives
// or the cycle limit is reached. Login failures abort before the first
// cycle. The portal session is released on every exit path.
func (d *Daemon) Start(ctx context.Context) (err error) {
	if d.pid != nil {
		if err := d.pid.Acquire(); err != nil {
			// another bot owns the game session; drop only our connection
			if derr := d.portal.Detach(); derr != nil {
				d.logger.Printf("Portal: detach failed: %v", derr)
			}
			return err
		}
		defer d.pid.Remove()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer d.release()

	cfg := d.Config()
	if err := d.portal.Login(ctx, cfg.Account.Host, cfg.Account.Login, cfg.Account.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	d.logger.Printf("Bot started as %s on %s", cfg.Account.Login, cfg.Account.Host)

	var reload <-chan struct{}
	if d.cfgPath != "" {
		reload, err = config.Watch(ctx, d.cfgPath)
		if err != nil {
			d.logger.Printf("Config: watch disabled: %v", err)
		}
	}

	err = d.loop(ctx, reload)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		d.logger.Println("Bot stopped")
		return nil
	}
	if err != nil {
		d.logger.Printf("Bot crashed: %v", err)
		if nerr := d.notifier.NotifyCrash(err); nerr != nil {
			d.logger.Printf("Notify: crash alert failed: %v", nerr)
		}
	}
	return err
}

func (d *Daemon) loop(ctx context.Context, reload <-chan struct{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run loop panic: %v", r)
		}
	}()

	for {
		if _, err := d.RunCycle(ctx); err != nil {
			return err
		}
		if d.maxCycles > 0 && d.state.Cycle >= d.maxCycles {
			return nil
		}

		pause := schedule.Interval(d.Config().BasePeriod(), d.rnd)
		d.logger.Printf("Sleeping %s", pause.Round(time.Second))
		if reload, err = d.waitWithReload(ctx, pause, reload); err != nil {
			return err
		}
	}
}

// waitWithReload pauses, reloading the config on every watcher event. It
// returns nil in place of reload once the watcher has closed it.
func (d *Daemon) waitWithReload(ctx context.Context, pause time.Duration, reload <-chan struct{}) (<-chan struct{}, error) {
	if reload == nil {
		return nil, d.wait(ctx, pause)
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.wait(waitCtx, pause) }()

	for {
		select {
		case err := <-done:
			return reload, err
		case _, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			d.reloadConfig()
		}
	}
}

// reloadConfig re-reads the config file, keeping the old one on errors
func (d *Daemon) reloadConfig() {
	cfg, err := config.Load(d.cfgPath)
	if err != nil {
		d.logger.Printf("Config: reload failed, keeping previous: %v", err)
		return
	}
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	d.logger.Printf("Config: reloaded %s", d.cfgPath)
}

func (d *Daemon) sleep(ctx context.Context, pause time.Duration) error {
	t := time.NewTimer(pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (d *Daemon) release() {
	if d.noClose {
		d.logger.Println("Leaving portal session open")
		if err := d.portal.Detach(); err != nil {
			d.logger.Printf("Portal: detach failed: %v", err)
		}
		return
	}
	if err := d.portal.Close(); err != nil && !errors.Is(err, portal.ErrClosed) {
		d.logger.Printf("Portal: close failed: %v", err)
	}
}

// RunCycle advances the counter and runs every due feature once. Feature
// failures are recorded in the summary; only cancellation is returned.
func (d *Daemon) RunCycle(ctx context.Context) (*models.Cycle, error) {
	n := d.state.Next()
	cfg := d.Config()

	cycle := &models.Cycle{Number: n, StartedAt: d.now(), Sent: make(map[models.Tier]int)}
	if d.cycles != nil {
		if _, err := d.cycles.Create(cycle); err != nil {
			d.logger.Printf("Cycle %d: failed to store summary: %v", n, err)
		}
	}
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	d.logger.Printf("Cycle %d started", n)

	d.sanitize(ctx)
	for _, f := range d.features(cfg, n) {
		if ctx.Err() != nil {
			break
		}
		if !f.enabled {
			continue
		}
		cycle.Features = append(cycle.Features, d.runFeature(ctx, f.name, func(ctx context.Context) error {
			return f.run(ctx, cfg, cycle)
		}))
	}
	d.sanitize(ctx)

	cycle.EndedAt = d.now()
	if d.cycles != nil {
		if err := d.cycles.Update(cycle); err != nil {
			d.logger.Printf("Cycle %d: failed to store summary: %v", n, err)
		}
	}
	d.logger.Printf("Cycle %d done: %d sent, %d added, %d failed", n, cycle.TotalSent(), cycle.Added, len(cycle.Failed()))
	return cycle, ctx.Err()
}

func (d *Daemon) sanitize(ctx context.Context) {
	if err := d.portal.Sanitize(ctx); err != nil && ctx.Err() == nil {
		d.logger.Printf("Portal: sanitize failed: %v", err)
	}
}

// runFeature isolates one feature: errors and panics are logged and
// recorded, never propagated.
func (d *Daemon) runFeature(ctx context.Context, name string, fn func(context.Context) error) (run models.FeatureRun) {
	run.Name = name
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			run.Error = fmt.Sprintf("panic: %v", r)
			d.logger.Printf("%s: panic: %v", name, r)
		}
		run.Duration = time.Since(start)
	}()

	err := fn(ctx)
	switch {
	case err == nil:
	case errors.Is(err, portal.ErrNotFound):
		d.logger.Printf("%s: unavailable this cycle: %v", name, err)
		run.Error = err.Error()
	default:
		d.logger.Printf("%s: %v", name, err)
		run.Error = err.Error()
	}
	return run
}

// Status reports whether a run loop owns the PID file
func Status(pid *PIDFile) (State, int, error) {
	running, n, err := pid.Check()
	if err != nil {
		return "", 0, err
	}
	if !running {
		return StateIdle, 0, nil
	}
	return StateRunning, n, nil
}
