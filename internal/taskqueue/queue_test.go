package taskqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	var order []int

	for i := 0; i < 10; i++ {
		i := i
		q.Enqueue(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	q.Wait()

	if len(order) != 10 {
		t.Fatalf("expected 10 executed tasks, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Errorf("task %d executed at position %d", v, i)
		}
	}
}

func TestQueue_SingleWorker(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	active := 0
	maxActive := 0

	for i := 0; i < 20; i++ {
		q.Enqueue(func(ctx context.Context) error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		})
	}

	q.Wait()

	if maxActive != 1 {
		t.Errorf("expected at most 1 task running at a time, got %d", maxActive)
	}
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	executed := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue(func(ctx context.Context) error {
				mu.Lock()
				executed++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	q.Wait()

	// Каждая задача выполняется ровно один раз, ни одна не теряется
	if executed != 50 {
		t.Errorf("expected 50 executed tasks, got %d", executed)
	}
}

func TestQueue_FailingTaskDoesNotStopQueue(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	executed := 0

	q.Enqueue(func(ctx context.Context) error {
		return errors.New("boom")
	})
	q.Enqueue(func(ctx context.Context) error {
		mu.Lock()
		executed++
		mu.Unlock()
		return nil
	})

	q.Wait()

	if executed != 1 {
		t.Error("task after a failing one should still execute")
	}
}

func TestQueue_PanickingTaskDoesNotStopQueue(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	executed := 0

	q.Enqueue(func(ctx context.Context) error {
		panic("boom")
	})
	q.Enqueue(func(ctx context.Context) error {
		mu.Lock()
		executed++
		mu.Unlock()
		return nil
	})

	q.Wait()

	if executed != 1 {
		t.Error("task after a panicking one should still execute")
	}
}

func TestQueue_EnqueueFromTask(t *testing.T) {
	q := New(Config{})

	var mu sync.Mutex
	var order []string

	q.Enqueue(func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "outer")
		mu.Unlock()

		q.Enqueue(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, "inner")
			mu.Unlock()
			return nil
		})
		return nil
	})

	q.Wait()

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("unexpected execution order: %v", order)
	}
}

func TestQueue_IdleAfterDrain(t *testing.T) {
	q := New(Config{})

	if !q.Idle() {
		t.Error("new queue should be idle")
	}

	q.Enqueue(func(ctx context.Context) error { return nil })
	q.Wait()

	if !q.Idle() {
		t.Error("queue should be idle after drain")
	}
	if q.Len() != 0 {
		t.Errorf("expected 0 pending tasks, got %d", q.Len())
	}
}

func TestQueue_BaseContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New(Config{BaseContext: ctx})

	cancel()

	done := make(chan error, 1)
	q.Enqueue(func(taskCtx context.Context) error {
		done <- taskCtx.Err()
		return nil
	})

	q.Wait()

	// Отмена базового контекста видна задаче
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
