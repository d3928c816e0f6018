package notify

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBus_SubscribeReceivesRetainedValue(t *testing.T) {
	b := New()
	b.Publish("topic.a", 1)

	_, events, unsubscribe := b.Subscribe(4)
	defer unsubscribe()

	ev := recv(t, events)
	if ev.Topic != "topic.a" || ev.Payload != 1 {
		t.Fatalf("got %+v, want retained topic.a=1", ev)
	}
}

func TestBus_SubscribeBeforeAnyPublish(t *testing.T) {
	b := New()
	_, events, unsubscribe := b.Subscribe(4)
	defer unsubscribe()

	b.Publish("topic.b", "hello")
	ev := recv(t, events)
	if ev.Topic != "topic.b" || ev.Payload != "hello" {
		t.Fatalf("got %+v", ev)
	}
}

func TestBus_LastReturnsMostRecentPerTopic(t *testing.T) {
	b := New()
	b.Publish("t", 1)
	b.Publish("t", 2)

	ev, ok := b.Last("t")
	if !ok || ev.Payload != 2 {
		t.Fatalf("Last() = %+v, %v, want payload 2", ev, ok)
	}

	if _, ok := b.Last("unknown"); ok {
		t.Fatal("Last() on an unpublished topic should report false")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	_, events, unsubscribe := b.Subscribe(4)
	unsubscribe()

	b.Publish("t", 1)

	if _, open := <-events; open {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := New()
	_, _, unsubscribe := b.Subscribe(1)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish("t", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}

func TestBus_SubscriberCount(t *testing.T) {
	b := New()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers initially")
	}
	_, _, unsubscribe := b.Subscribe(1)
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber after Subscribe")
	}
	unsubscribe()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe")
	}
}
