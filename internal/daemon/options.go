package daemon

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/esemi/travian-manager/internal/notify"
	"github.com/esemi/travian-manager/internal/raid"
	"github.com/esemi/travian-manager/internal/storage"
)

// Option configures a Daemon
type Option func(*Daemon)

// WithLogger sets the daemon logger
func WithLogger(logger *log.Logger) Option {
	return func(d *Daemon) {
		d.logger = logger
	}
}

// WithNotifier sets the alert fan-out
func WithNotifier(m *notify.Manager) Option {
	return func(d *Daemon) {
		d.notifier = m
	}
}

// WithCycleStore records a summary of every cycle
func WithCycleStore(s *storage.CycleStore) Option {
	return func(d *Daemon) {
		d.cycles = s
	}
}

// WithJournal records every dispatched raid
func WithJournal(j raid.Journal) Option {
	return func(d *Daemon) {
		d.journal = j
	}
}

// WithPIDFile guards the loop with a PID file
func WithPIDFile(p *PIDFile) Option {
	return func(d *Daemon) {
		d.pid = p
	}
}

// WithConfigPath enables reloading the config file between cycles
func WithConfigPath(path string) Option {
	return func(d *Daemon) {
		d.cfgPath = path
	}
}

// WithNoClose leaves the portal session open on exit
func WithNoClose(noClose bool) Option {
	return func(d *Daemon) {
		d.noClose = noClose
	}
}

// WithRand sets the randomness source for shuffles and sleeps
func WithRand(rnd *rand.Rand) Option {
	return func(d *Daemon) {
		d.rnd = rnd
	}
}

// WithClock overrides the server clock
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) {
		d.now = now
	}
}

// WithWait replaces the pause between cycles
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Daemon) {
		d.wait = wait
	}
}

// WithMaxCycles stops the loop after n cycles; 0 runs until cancelled
func WithMaxCycles(n int) Option {
	return func(d *Daemon) {
		d.maxCycles = n
	}
}
