package notify

import (
	"context"
	"sync"
)

// DefaultFeedSize is the number of notices a Feed retains.
const DefaultFeedSize = 100

// Feed keeps the most recent notices in memory. Notices not yet shown as
// toasts are returned once by Drain. Subscribers receive every new notice.
type Feed struct {
	mu      sync.Mutex
	size    int
	recent  []Notice
	pending []Notice
	subs    map[chan Notice]struct{}
}

// NewFeed creates a Feed retaining up to size notices.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, subs: make(map[chan Notice]struct{})}
}

var _ Notifier = (*Feed)(nil)

// Notify records n and broadcasts it. Slow subscribers miss notices rather
// than blocking the caller.
func (f *Feed) Notify(_ context.Context, n Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recent = appendBounded(f.recent, n, f.size)
	f.pending = appendBounded(f.pending, n, f.size)
	for ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Drain returns the notices not yet drained, oldest first, and clears them.
func (f *Feed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

// Recent returns up to limit of the newest notices, newest first. A
// non-positive limit returns everything retained.
func (f *Feed) Recent(limit int) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.recent)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Notice, 0, n)
	for i := len(f.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.recent[i])
	}
	return out
}

// Last returns the newest notice, if any.
func (f *Feed) Last() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recent) == 0 {
		return Notice{}, false
	}
	return f.recent[len(f.recent)-1], true
}

// Subscribe registers a listener. The returned cancel function unregisters
// it and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan Notice, func()) {
	ch := make(chan Notice, buffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func appendBounded(list []Notice, n Notice, size int) []Notice {
	list = append(list, n)
	if len(list) > size {
		list = append(list[:0:0], list[len(list)-size:]...)
	}
	return list
}
