package logging

import (
	"sync"
	"sync/atomic"
)

const (
	defaultConsoleBacklog   = 500
	defaultSubscriberBuffer = 256
)

// ConsoleHub is the webview target: a zapcore.WriteSyncer that keeps the most
// recent records in a ring and fans every record out to live subscribers.
// Writes never block on a subscriber; a full subscriber buffer drops records.
type ConsoleHub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	ring    [][]byte
	next    int
	full    bool
	closed  bool
	written atomic.Uint64
}

// Subscription receives encoded records (one JSON object per message).
type Subscription struct {
	C       <-chan []byte
	ch      chan []byte
	hub     *ConsoleHub
	once    sync.Once
	dropped atomic.Uint64
}

func NewConsoleHub(backlog int) *ConsoleHub {
	if backlog <= 0 {
		backlog = defaultConsoleBacklog
	}
	return &ConsoleHub{
		subs: make(map[*Subscription]struct{}),
		ring: make([][]byte, backlog),
	}
}

// Write copies p; zap reuses its buffers after Write returns.
func (h *ConsoleHub) Write(p []byte) (int, error) {
	rec := make([]byte, len(p))
	copy(rec, p)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return len(p), nil
	}
	h.ring[h.next] = rec
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}
	h.written.Add(1)

	for s := range h.subs {
		select {
		case s.ch <- rec:
		default:
			s.dropped.Add(1)
		}
	}
	return len(p), nil
}

func (h *ConsoleHub) Sync() error { return nil }

// Backlog returns the retained records, oldest first.
func (h *ConsoleHub) Backlog() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.backlogLocked()
}

func (h *ConsoleHub) backlogLocked() [][]byte {
	var out [][]byte
	if h.full {
		out = make([][]byte, 0, len(h.ring))
		out = append(out, h.ring[h.next:]...)
		out = append(out, h.ring[:h.next]...)
		return out
	}
	out = make([][]byte, h.next)
	copy(out, h.ring[:h.next])
	return out
}

// Subscribe registers a live listener and returns the backlog captured
// atomically with the registration, so no record is seen twice or missed.
func (h *ConsoleHub) Subscribe(buffer int) (*Subscription, [][]byte) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan []byte, buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	backlog := h.backlogLocked()
	if h.closed {
		close(ch)
		return s, backlog
	}
	h.subs[s] = struct{}{}
	return s, backlog
}

// Subscribers returns the number of live subscriptions.
func (h *ConsoleHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Written returns how many records went through the hub.
func (h *ConsoleHub) Written() uint64 { return h.written.Load() }

// Close ends every subscription; later writes are discarded.
func (h *ConsoleHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		s.once.Do(func() { close(s.ch) })
	}
}

// Dropped counts records lost because the subscriber was too slow.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }
