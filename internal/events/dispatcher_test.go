package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls int
	d.Subscribe(EventReferralCreated, func(context.Context, Event) error {
		calls++
		return errors.New("first failed")
	})
	d.Subscribe(EventReferralCreated, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventReferralsTimedOut, func(context.Context, Event) error {
		t.Fatal("handler for another type must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventReferralCreated})
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected the handler failure to be reported")
	}
}

func TestNewEventIDMonotonic(t *testing.T) {
	ts := time.Now()
	a := NewEventID(ts)
	b := NewEventID(ts)
	if len(a) != 26 || a >= b {
		t.Fatalf("expected sortable ulids, got %s then %s", a, b)
	}
}
