package notify

import (
	"context"

	"go.uber.org/zap"
)

// Fanout delivers each notice to every sink in order. A failing sink is
// logged and never stops delivery to the rest.
type Fanout struct {
	sinks []Notifier
}

// NewFanout creates a Fanout over the non-nil sinks.
func NewFanout(sinks ...Notifier) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Add appends a sink.
func (f *Fanout) Add(s Notifier) {
	if s != nil {
		f.sinks = append(f.sinks, s)
	}
}

// Len returns the number of sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Notify delivers n to every sink. It always returns nil.
func (f *Fanout) Notify(ctx context.Context, n Notice) error {
	for _, s := range f.sinks {
		if err := s.Notify(ctx, n); err != nil {
			zap.L().Warn("notify: sink failed",
				zap.String("action", n.Action),
				zap.String("message", n.Message),
				zap.Error(err))
		}
	}
	return nil
}

// Filter forwards only the notices keep accepts.
type Filter struct {
	next Notifier
	keep func(Notice) bool
}

// NewFilter wraps next with a predicate.
func NewFilter(next Notifier, keep func(Notice) bool) *Filter {
	return &Filter{next: next, keep: keep}
}

// ErrorsOnly wraps next so it only sees error notices.
func ErrorsOnly(next Notifier) *Filter {
	return NewFilter(next, func(n Notice) bool { return n.Level == LevelError })
}

// Notify forwards n when the predicate accepts it.
func (f *Filter) Notify(ctx context.Context, n Notice) error {
	if !f.keep(n) {
		return nil
	}
	return f.next.Notify(ctx, n)
}
