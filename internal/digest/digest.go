// Package digest periodically summarises instance and schedule status as an
// info notice and prunes the activity journal.
package digest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/gateway"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/notify"
	"github.com/zulandar/wadash/internal/schedule"
	"go.uber.org/zap"
)

// Action is the notice action used for digests.
const Action = "digest"

// Pruner removes journal entries older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Report holds the counts for one digest run.
type Report struct {
	At        time.Time
	Instances map[models.InstanceStatus]int
	Schedules map[string]int // keyed by schedule.StatusBadge class
	Pruned    int64
}

// Empty reports whether there is nothing to summarise.
func (r *Report) Empty() bool {
	return len(r.Instances) == 0 && len(r.Schedules) == 0
}

// Format renders the report as one line.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instances: %d connected, %d connecting, %d disconnected",
		r.Instances[models.StatusConnected],
		r.Instances[models.StatusConnecting],
		r.Instances[models.StatusDisconnected])
	fmt.Fprintf(&b, ". Schedules: %d pending, %d sent, %d failed",
		r.Schedules[schedule.BadgePending],
		r.Schedules[schedule.BadgeSuccess],
		r.Schedules[schedule.BadgeError])
	return b.String()
}

// Digest builds reports and runs them on a cron schedule.
type Digest struct {
	gw        gateway.Gateway
	notifier  notify.Notifier
	pruner    Pruner
	retention time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// Option configures a Digest.
type Option func(*Digest)

// WithPruner prunes journal entries older than retention on every run.
func WithPruner(p Pruner, retention time.Duration) Option {
	return func(d *Digest) {
		d.pruner = p
		d.retention = retention
	}
}

// New creates a Digest.
func New(gw gateway.Gateway, notifier notify.Notifier, opts ...Option) *Digest {
	if notifier == nil {
		notifier = notify.Discard
	}
	d := &Digest{gw: gw, notifier: notifier}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Build fetches instances and schedules and counts them by status.
func (d *Digest) Build(ctx context.Context) (*Report, error) {
	instances, err := d.gw.Instances(ctx)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}
	schedules, err := d.gw.Schedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}

	r := &Report{
		At:        time.Now(),
		Instances: make(map[models.InstanceStatus]int),
		Schedules: make(map[string]int),
	}
	for _, inst := range instances {
		r.Instances[models.NormalizeStatus(string(inst.Status))]++
	}
	for _, s := range schedules {
		r.Schedules[schedule.StatusBadge(s.Status)]++
	}
	return r, nil
}

// RunOnce builds a report, emits it unless empty, and prunes the journal.
func (d *Digest) RunOnce(ctx context.Context) (*Report, error) {
	r, err := d.Build(ctx)
	if err != nil {
		return nil, err
	}
	if !r.Empty() {
		_ = d.notifier.Notify(ctx, notify.Info(Action, "", r.Format()))
	}
	if d.pruner != nil && d.retention > 0 {
		n, err := d.pruner.Prune(ctx, r.At.Add(-d.retention))
		if err != nil {
			return r, fmt.Errorf("digest: %w", err)
		}
		r.Pruned = n
	}
	return r, nil
}

// Start runs the digest on the 5-field cron expression until Stop.
func (d *Digest) Start(ctx context.Context, expr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return fmt.Errorf("digest: already started")
	}
	c := cron.New(cron.WithParser(config.CronParser))
	_, err := c.AddFunc(expr, func() {
		if _, err := d.RunOnce(ctx); err != nil {
			zap.L().Warn("digest: run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("digest: schedule %q: %w", expr, err)
	}
	c.Start()
	d.cron = c
	zap.L().Info("digest scheduled", zap.String("cron", expr))
	return nil
}

// Stop halts the schedule and waits for a running digest to finish.
func (d *Digest) Stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
