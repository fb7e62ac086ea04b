package scheduler

import (
	"testing"
	"time"

	"github.com/seantiz/vigil/internal/model"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewEventBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Publish(model.Event{Kind: model.EventStarted, ActorID: "a"})

	select {
	case e := <-ch:
		if e.Kind != model.EventStarted || e.ActorID != "a" {
			t.Errorf("event = %+v, want started for a", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBrokerMultipleSubscribers(t *testing.T) {
	b := NewEventBroker()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(model.Event{Kind: model.EventTerminated})

	for i, ch := range []<-chan model.Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Kind != model.EventTerminated {
				t.Errorf("subscriber %d got %q", i, e.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewEventBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	for range subscriberBufferSize + 10 {
		b.Publish(model.Event{Kind: model.EventStarted})
	}
	if got := len(ch); got != subscriberBufferSize {
		t.Errorf("buffered = %d, want %d", got, subscriberBufferSize)
	}
}

func TestBrokerCloseClosesSubscribers(t *testing.T) {
	b := NewEventBroker()
	ch, unsub := b.Subscribe()

	b.Close()
	if _, ok := <-ch; ok {
		t.Error("channel still open after Close")
	}
	// Unsubscribing after Close must not double-close.
	unsub()

	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed")
	}
	b.Publish(model.Event{Kind: model.EventStarted})
	b.Close()
}
