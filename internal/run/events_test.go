package run

import (
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, open := <-ch:
			if !open {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("stream never closed, got %d events so far", len(out))
		}
	}
}

func TestBroker_EverySubscriberSeesTheFullStream(t *testing.T) {
	b := NewBroker()
	src := b.Allocate("run-1", 10)

	src <- Event{Type: EventTypeProgress, Message: "Extracting: a.pdf"}

	first, cancelFirst, ok := b.Subscribe("run-1")
	if !ok {
		t.Fatalf("run-1 must be subscribable")
	}
	defer cancelFirst()
	second, cancelSecond, ok := b.Subscribe("run-1")
	if !ok {
		t.Fatalf("second watcher must be subscribable")
	}
	defer cancelSecond()

	src <- Event{Type: EventTypeProgress, Message: "Extracting: b.pdf"}
	src <- Event{Type: EventTypeDone, Progress: 100}
	close(src)

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		events := collect(t, ch)
		if len(events) != 3 {
			t.Fatalf("%s watcher got %d events, want 3: %+v", name, len(events), events)
		}
		if events[0].Message != "Extracting: a.pdf" {
			t.Fatalf("%s watcher missed the replayed event: %+v", name, events[0])
		}
		if !events[2].Terminal() {
			t.Fatalf("%s watcher never saw the terminal event: %+v", name, events[2])
		}
	}
}

func TestBroker_LateSubscriberGetsHistoryThenClose(t *testing.T) {
	b := NewBroker()
	src := b.Allocate("run-2", 10)
	src <- Event{Type: EventTypeProgress, Message: "Extracting: a.pdf"}
	src <- Event{Type: EventTypeDone, Progress: 100}
	close(src)

	// The pump drains asynchronously; wait for the stream to end.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ch, cancel, ok := b.Subscribe("run-2")
		if !ok {
			t.Fatalf("run-2 must stay subscribable until cleanup")
		}
		events := collect(t, ch)
		cancel()
		if len(events) == 2 && events[1].Terminal() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("late subscriber got %d events, want full history of 2", len(events))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroker_CancelDetachesWithoutEndingTheRun(t *testing.T) {
	b := NewBroker()
	src := b.Allocate("run-3", 10)

	watcher, cancel, ok := b.Subscribe("run-3")
	if !ok {
		t.Fatalf("run-3 must be subscribable")
	}
	cancel()
	if _, open := <-watcher; open {
		t.Fatalf("cancelled subscription must be closed")
	}

	// The producer side is unaffected by the detach.
	src <- Event{Type: EventTypeDone, Progress: 100}
	close(src)

	stayed, cancel2, ok := b.Subscribe("run-3")
	if !ok {
		t.Fatalf("run-3 must still be subscribable")
	}
	defer cancel2()
	events := collect(t, stayed)
	if len(events) != 1 || !events[0].Terminal() {
		t.Fatalf("remaining watcher got %+v, want the terminal event", events)
	}
}
