package run

import (
	"strings"
	"sync"
	"time"
)

const completedRunRetention = 30 * time.Second

// EventType matches the wire enum for progress events.
type EventType int

const (
	EventTypeProgress EventType = iota
	EventTypeDone
	EventTypeError
)

func (t EventType) String() string {
	switch t {
	case EventTypeProgress:
		return "progress"
	case EventTypeDone:
		return "done"
	case EventTypeError:
		return "error"
	}
	return "unknown"
}

// Event is one entry of a run's progress stream. A stream carries zero or
// more progress events and exactly one terminal done or error event.
type Event struct {
	Type     EventType `json:"type"`
	Message  string    `json:"message,omitempty"`
	Progress int32     `json:"progress,omitempty"`
}

// Terminal reports whether the event ends its stream.
func (e Event) Terminal() bool {
	return e.Type == EventTypeDone || e.Type == EventTypeError
}

const subscriberBuffer = 100

// Broker manages per-run event streams. Each run has a single producer
// channel; every subscriber gets its own channel carrying the whole
// stream, with events published before attachment replayed first.
type Broker struct {
	mu   sync.RWMutex
	runs map[string]*runStream
}

type runStream struct {
	mu      sync.Mutex
	history []Event
	subs    map[chan Event]struct{}
	ended   bool
}

func (s *runStream) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, ev)
	for sub := range s.subs {
		// Never block the producer on a slow subscriber.
		select {
		case sub <- ev:
		default:
		}
	}
}

func (s *runStream) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	for sub := range s.subs {
		close(sub)
		delete(s.subs, sub)
	}
}

func NewBroker() *Broker {
	return &Broker{runs: make(map[string]*runStream)}
}

// Allocate registers a run and returns its producer channel. The
// producer closes the channel when the run ends; the broker pumps it
// into every subscriber until then.
func (b *Broker) Allocate(runID string, size int) chan Event {
	if size <= 0 {
		size = 1
	}
	src := make(chan Event, size)
	stream := &runStream{subs: make(map[chan Event]struct{})}
	b.mu.Lock()
	b.runs[strings.TrimSpace(runID)] = stream
	b.mu.Unlock()
	go func() {
		for ev := range src {
			stream.broadcast(ev)
		}
		stream.end()
	}()
	return src
}

// Subscribe attaches a watcher to a run. The returned channel replays
// every event published so far, then carries live events until the run
// ends; the cancel func detaches early. For an already-ended run the
// channel holds the full history and is closed.
func (b *Broker) Subscribe(runID string) (<-chan Event, func(), bool) {
	b.mu.RLock()
	stream, ok := b.runs[strings.TrimSpace(runID)]
	b.mu.RUnlock()
	if !ok {
		return nil, nil, false
	}

	stream.mu.Lock()
	ch := make(chan Event, len(stream.history)+subscriberBuffer)
	for _, ev := range stream.history {
		ch <- ev
	}
	if stream.ended {
		close(ch)
		stream.mu.Unlock()
		return ch, func() {}, true
	}
	stream.subs[ch] = struct{}{}
	stream.mu.Unlock()

	cancel := func() {
		stream.mu.Lock()
		if _, live := stream.subs[ch]; live {
			delete(stream.subs, ch)
			close(ch)
		}
		stream.mu.Unlock()
	}
	return ch, cancel, true
}

// ScheduleCleanup removes a run's stream after a retention period.
func (b *Broker) ScheduleCleanup(runID string) {
	time.AfterFunc(completedRunRetention, func() {
		b.mu.Lock()
		delete(b.runs, strings.TrimSpace(runID))
		b.mu.Unlock()
	})
}
