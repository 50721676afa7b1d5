package taskqueue

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Task — отложенная единица работы.
//
// Возвращённая ошибка логируется и не влияет на остальные задачи.
// Паника внутри задачи перехватывается циклом — очередь продолжает
// работу. Задача никогда не повторяется автоматически.
type Task func(ctx context.Context) error

// Queue — внутрипроцессная очередь задач с одним worker-циклом.
//
// Задачи выполняются строго в порядке добавления (FIFO), по одной
// за раз. Worker-цикл запускается лениво при первом Enqueue и
// завершается, когда очередь пуста. Повторный Enqueue во время
// работы цикла не порождает второй цикл.
//
// Проверка "очередь пуста" и сброс флага running выполняются под тем
// же мьютексом, что и Enqueue, поэтому добавление задачи, гонящееся
// с завершением цикла, либо попадает в ещё работающий цикл, либо
// запускает новый. Задача не может быть потеряна.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []Task
	running bool

	baseCtx context.Context
	logger  *slog.Logger
}

// Config — конфигурация Queue.
type Config struct {
	// BaseContext — контекст, передаваемый каждой задаче.
	// Его отмена видна задачам (default: context.Background()).
	BaseContext context.Context

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт новую Queue.
func New(cfg Config) *Queue {
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		baseCtx: baseCtx,
		logger:  logger,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue добавляет задачу в конец очереди и запускает worker-цикл,
// если он не активен. Безопасен для конкурентного вызова, в том
// числе из выполняющейся задачи.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, task)

	if !q.running {
		q.running = true
		go q.drain()
	}
}

// drain — worker-цикл: выбирает задачи по одной и выполняет до
// опустошения очереди.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			// Сброс флага под мьютексом: конкурентный Enqueue
			// после этой точки запустит новый цикл.
			q.running = false
			q.cond.Broadcast()
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(task)
	}
}

// execute выполняет одну задачу, перехватывая ошибки и паники.
func (q *Queue) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queued task panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := task(q.baseCtx); err != nil {
		q.logger.Error("queued task failed", "error", err)
	}
}

// Wait блокируется, пока очередь не опустеет и worker-цикл не
// завершится. Используется в тестах и при graceful shutdown.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.running || len(q.pending) > 0 {
		q.cond.Wait()
	}
}

// Idle возвращает true, если worker-цикл не активен и очередь пуста.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.running && len(q.pending) == 0
}

// Len возвращает количество ожидающих задач (без выполняющейся).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
