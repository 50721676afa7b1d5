package stream

import (
	"context"
	"log/slog"
	"sync"
)

// Sink — абстрактный получатель событий (например, живое websocket
// соединение или канал в тестах).
//
// Send доставляет одно событие. Ошибка доставки логируется хабом и
// пропускается — она не прерывает рассылку другим получателям и не
// возвращается вызывающему Broadcast.
type Sink interface {
	Send(ctx context.Context, event Event) error
}

// Hub — брокер подписок: ведёт множество живых получателей по каждому
// топику и рассылает события best-effort.
//
// Топик — это run ID или chat thread ID. Топик создаётся при первой
// подписке и удаляется при последней отписке; история не хранится:
// подписчик не получает события, разосланные до его подписки.
//
// Дисциплина блокировок: мьютекс защищает только membership-карту.
// Broadcast снимает срез получателей под блокировкой, а доставку
// выполняет вне её, поэтому медленный получатель не задерживает
// Subscribe/Unsubscribe других.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[Sink]struct{}

	logger *slog.Logger
}

// Config — конфигурация Hub.
type Config struct {
	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewHub создаёт пустой Hub.
func NewHub(cfg Config) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		topics: make(map[string]map[Sink]struct{}),
		logger: logger,
	}
}

// Subscribe регистрирует получателя для будущих рассылок по топику.
// Повторная подписка того же получателя — no-op.
func (h *Hub) Subscribe(topic string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sinks, ok := h.topics[topic]
	if !ok {
		sinks = make(map[Sink]struct{})
		h.topics[topic] = sinks
	}
	sinks[sink] = struct{}{}
}

// Unsubscribe удаляет получателя из топика. No-op, если получатель
// не подписан. Пустой топик удаляется.
func (h *Hub) Unsubscribe(topic string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sinks, ok := h.topics[topic]
	if !ok {
		return
	}

	delete(sinks, sink)
	if len(sinks) == 0 {
		delete(h.topics, topic)
	}
}

// Broadcast доставляет событие каждому текущему подписчику топика.
//
// Рассылка по топику без подписчиков — no-op. Ошибка доставки одному
// получателю логируется и не мешает остальным. Порядок обхода
// получателей внутри одной рассылки не определён; последовательные
// Broadcast из одной горутины каждый получатель видит в порядке
// вызова (доставка синхронна).
func (h *Hub) Broadcast(ctx context.Context, topic string, event Event) {
	h.mu.RLock()
	sinks := make([]Sink, 0, len(h.topics[topic]))
	for sink := range h.topics[topic] {
		sinks = append(sinks, sink)
	}
	h.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Send(ctx, event); err != nil {
			h.logger.Warn("event delivery failed",
				"topic", topic,
				"event", event.Event,
				"error", err,
			)
		}
	}
}

// Subscribers возвращает количество подписчиков топика.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Topics возвращает количество живых топиков.
func (h *Hub) Topics() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}
