package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// failSink всегда возвращает ошибку доставки.
type failSink struct{}

func (failSink) Send(ctx context.Context, event Event) error {
	return errors.New("delivery failed")
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	h := NewHub(Config{})

	// Не должно паниковать и блокироваться
	h.Broadcast(context.Background(), "nobody", Event{Event: EventStarted})

	if h.Topics() != 0 {
		t.Errorf("expected 0 topics, got %d", h.Topics())
	}
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	h := NewHub(Config{})
	sink := NewChanSink(10)

	h.Subscribe("run-1", sink)

	h.Broadcast(context.Background(), "run-1", Event{Event: EventStarted})
	h.Broadcast(context.Background(), "run-1", Event{Event: EventCompleted})

	first := <-sink.Events()
	second := <-sink.Events()

	if first.Event != EventStarted {
		t.Errorf("expected %s first, got %s", EventStarted, first.Event)
	}
	if second.Event != EventCompleted {
		t.Errorf("expected %s second, got %s", EventCompleted, second.Event)
	}
}

func TestHub_TopicIsolation(t *testing.T) {
	h := NewHub(Config{})
	sinkA := NewChanSink(10)
	sinkB := NewChanSink(10)

	h.Subscribe("run-a", sinkA)
	h.Subscribe("run-b", sinkB)

	h.Broadcast(context.Background(), "run-a", Event{Event: EventStarted})

	if len(sinkA.Events()) != 1 {
		t.Error("subscriber of run-a should receive the event")
	}
	if len(sinkB.Events()) != 0 {
		t.Error("subscriber of run-b should not receive events of run-a")
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(Config{})
	sink := NewChanSink(10)

	h.Subscribe("run-1", sink)
	h.Unsubscribe("run-1", sink)

	h.Broadcast(context.Background(), "run-1", Event{Event: EventStarted})

	if len(sink.Events()) != 0 {
		t.Error("unsubscribed sink should not receive events")
	}
	// Пустой топик удаляется
	if h.Topics() != 0 {
		t.Errorf("expected 0 topics after last unsubscribe, got %d", h.Topics())
	}
}

func TestHub_DuplicateSubscribeIsNoop(t *testing.T) {
	h := NewHub(Config{})
	sink := NewChanSink(10)

	h.Subscribe("run-1", sink)
	h.Subscribe("run-1", sink)

	if h.Subscribers("run-1") != 1 {
		t.Errorf("expected 1 subscriber, got %d", h.Subscribers("run-1"))
	}

	h.Broadcast(context.Background(), "run-1", Event{Event: EventStarted})

	if len(sink.Events()) != 1 {
		t.Errorf("expected 1 delivered event, got %d", len(sink.Events()))
	}
}

func TestHub_UnsubscribeUnknownIsNoop(t *testing.T) {
	h := NewHub(Config{})

	// Не должно паниковать
	h.Unsubscribe("missing", NewChanSink(1))
}

func TestHub_FailingSinkDoesNotBlockOthers(t *testing.T) {
	h := NewHub(Config{})
	healthy := NewChanSink(10)

	h.Subscribe("run-1", failSink{})
	h.Subscribe("run-1", healthy)

	h.Broadcast(context.Background(), "run-1", Event{Event: EventStarted})

	if len(healthy.Events()) != 1 {
		t.Error("healthy sink should receive the event despite a failing peer")
	}
}

func TestHub_MultipleSubscribersReceiveAll(t *testing.T) {
	h := NewHub(Config{})

	sinks := make([]*ChanSink, 3)
	for i := range sinks {
		sinks[i] = NewChanSink(10)
		h.Subscribe("run-1", sinks[i])
	}

	for i := 0; i < 5; i++ {
		h.Broadcast(context.Background(), "run-1", Event{Event: EventNodeUpdate, Node: fmt.Sprintf("n%d", i)})
	}

	for si, sink := range sinks {
		for i := 0; i < 5; i++ {
			event := <-sink.Events()
			// Каждый подписчик видит события в порядке рассылки
			if event.Node != fmt.Sprintf("n%d", i) {
				t.Errorf("sink %d: expected node n%d at position %d, got %s", si, i, i, event.Node)
			}
		}
	}
}

func TestHub_ConcurrentSubscribeBroadcast(t *testing.T) {
	h := NewHub(Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			sink := NewChanSink(100)
			topic := fmt.Sprintf("run-%d", i%3)
			h.Subscribe(topic, sink)
			h.Unsubscribe(topic, sink)
		}()
		go func() {
			defer wg.Done()
			h.Broadcast(context.Background(), fmt.Sprintf("run-%d", i%3), Event{Event: EventStarted})
		}()
	}
	wg.Wait()
}

func TestChanSink_BufferFull(t *testing.T) {
	sink := NewChanSink(1)
	ctx := context.Background()

	if err := sink.Send(ctx, Event{Event: EventStarted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Буфер полон: событие отбрасывается, Send не блокируется
	if err := sink.Send(ctx, Event{Event: EventCompleted}); !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}
}

func TestChanSink_SendAfterClose(t *testing.T) {
	sink := NewChanSink(1)
	sink.Close()

	if err := sink.Send(context.Background(), Event{Event: EventStarted}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("expected ErrSinkClosed, got %v", err)
	}

	// Повторный Close — no-op
	sink.Close()

	// Канал закрыт
	if _, ok := <-sink.Events(); ok {
		t.Error("events channel should be closed")
	}
}
