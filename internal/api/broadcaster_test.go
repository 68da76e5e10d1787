package api

import (
	"testing"
	"time"
)

func TestBroadcastDeliversToMatchingSubscriber(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("job1", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastStatus("job1", "running")

	select {
	case ev := <-sub.Channel:
		if ev.Type != EventTypeStatus || ev.JobID != "job1" {
			t.Fatalf("got event %+v, want a status event for job1", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestSubscriptionFiltersOtherJobs(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("job1", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastStatus("job2", "running")

	select {
	case ev := <-sub.Channel:
		t.Fatalf("unexpected event delivered to a job1-only subscriber: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionFiltersEventType(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("job1", []EventType{EventTypeStatus})
	defer b.Unsubscribe(sub)

	b.BroadcastDiagnostic("job1", "warning: something")

	select {
	case ev := <-sub.Channel:
		t.Fatalf("unexpected diagnostic delivered to a status-only subscriber: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionCountTracksLifecycle(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	if b.SubscriptionCount() != 0 {
		t.Fatalf("fresh broadcaster should have 0 subscriptions, got %d", b.SubscriptionCount())
	}
	sub := b.Subscribe("", nil)
	waitUntil(t, func() bool { return b.SubscriptionCount() == 1 })

	b.Unsubscribe(sub)
	waitUntil(t, func() bool { return b.SubscriptionCount() == 0 })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
