package event

import (
	"sync"
	"testing"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe("element.score", func(e Event) {
		received = e
	})

	evt := NewElementScoreEvent("sess-1", "el-1", "security", 85, 3, "gpt")
	bus.Publish(evt)

	if received == nil {
		t.Fatal("handler was not called")
	}
	scored, ok := received.(ElementScoreEvent)
	if !ok {
		t.Fatalf("expected ElementScoreEvent, got %T", received)
	}
	if scored.ElementName != "security" {
		t.Errorf("ElementName = %q, want %q", scored.ElementName, "security")
	}
	if scored.Score != 85 {
		t.Errorf("Score = %d, want 85", scored.Score)
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe("element.complete", func(Event) { calls++ })

	bus.Publish(NewElementScoreEvent("s", "e", "security", 50, 1, "gpt"))

	if calls != 0 {
		t.Errorf("handler called %d times for non-matching type, want 0", calls)
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var types []string
	bus.SubscribeAll(func(e Event) {
		types = append(types, e.EventType())
	})

	bus.Publish(NewDebateStartedEvent("s", "topic", "code-review", nil, nil))
	bus.Publish(NewDebateCompleteEvent("s", "completed", 4))

	want := []string{"debate.started", "debate.complete"}
	if len(types) != len(want) {
		t.Fatalf("received %d events, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestSubscribePattern(t *testing.T) {
	bus := NewBus()

	var matched []string
	if _, err := bus.SubscribePattern("element.*", func(e Event) {
		matched = append(matched, e.EventType())
	}); err != nil {
		t.Fatalf("SubscribePattern() error = %v", err)
	}

	bus.Publish(NewElementScoreEvent("s", "e", "security", 50, 1, "gpt"))
	bus.Publish(NewCycleDetectedEvent("s", "e", "security", "A-B-A"))
	bus.Publish(NewDebateCompleteEvent("s", "completed", 1))

	want := []string{"element.score", "element.cycle"}
	if len(matched) != len(want) {
		t.Fatalf("matched %d events, want %d: %v", len(matched), len(want), matched)
	}
	for i := range want {
		if matched[i] != want[i] {
			t.Errorf("matched[%d] = %q, want %q", i, matched[i], want[i])
		}
	}
}

func TestSubscribePatternInvalid(t *testing.T) {
	bus := NewBus()

	if _, err := bus.SubscribePattern("[", func(Event) {}); err == nil {
		t.Error("expected error for invalid glob pattern")
	}
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribe, want 0", got)
	}
}

func TestExactHandlersRunBeforePatternHandlers(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "pattern") })
	bus.Subscribe("debate.progress", func(Event) { order = append(order, "exact") })

	bus.Publish(NewProgressEvent("s", 1, "gpt", 2))

	if len(order) != 2 || order[0] != "exact" || order[1] != "pattern" {
		t.Errorf("dispatch order = %v, want [exact pattern]", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe("debate.error", func(Event) { calls++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false, want true")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}

	bus.Publish(NewErrorEvent("s", 1, "gpt", "boom", false))
	if calls != 0 {
		t.Errorf("handler called %d times after unsubscribe, want 0", calls)
	}
}

func TestUnsubscribePattern(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.SubscribeAll(func(Event) { calls++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false, want true")
	}

	bus.Publish(NewProgressEvent("s", 1, "gpt", 2))
	if calls != 0 {
		t.Errorf("handler called %d times after unsubscribe, want 0", calls)
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("debate.progress", func(Event) {
		panic("handler bug")
	})

	called := false
	bus.Subscribe("debate.progress", func(Event) { called = true })

	bus.Publish(NewProgressEvent("s", 1, "gpt", 2))

	if !called {
		t.Error("second handler was not called after first panicked")
	}
}

func TestClear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()

	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear, want 0", got)
	}
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("debate.progress", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewProgressEvent("s", 1, "gpt", 2))
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}
