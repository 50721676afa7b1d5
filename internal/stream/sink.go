package stream

import (
	"context"
	"errors"
	"sync"
)

// Ошибки доставки.
var (
	// ErrSinkClosed — получатель закрыт.
	ErrSinkClosed = errors.New("sink closed")

	// ErrBufferFull — буфер получателя переполнен, событие отброшено.
	ErrBufferFull = errors.New("sink buffer full")
)

// ChanSink — получатель на основе буферизованного канала.
//
// Send не блокируется: при переполненном буфере событие отбрасывается
// с ErrBufferFull (хаб логирует и продолжает). Используется тестами
// и как основа для транспортных адаптеров.
type ChanSink struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// NewChanSink создаёт ChanSink с буфером на size событий.
func NewChanSink(size int) *ChanSink {
	if size <= 0 {
		size = 64
	}
	return &ChanSink{ch: make(chan Event, size)}
}

// Send помещает событие в буфер.
func (s *ChanSink) Send(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	select {
	case s.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Events возвращает канал для чтения доставленных событий.
// Канал закрывается при Close.
func (s *ChanSink) Events() <-chan Event {
	return s.ch
}

// Close закрывает получатель. Последующие Send возвращают ErrSinkClosed.
// Повторный Close — no-op.
func (s *ChanSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
