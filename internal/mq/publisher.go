package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Fastgraph/internal/domain"
)

// ExchangeEvents — exchange для событий жизненного цикла runs.
const ExchangeEvents = "fastgraph.events"

// RoutingKeyRunFinished — routing key терминальных событий.
const RoutingKeyRunFinished = "run.finished"

// Publisher зеркалирует терминальные события runs во внешний AMQP
// exchange — для интеграций, которым не нужен websocket.
//
// Доставка best-effort: ошибка публикации логируется и не влияет
// на run. Publisher реализует workflow.Notifier.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher и объявляет exchange.
func NewPublisher(conn *Connection, logger *slog.Logger) (*Publisher, error) {
	ch := conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("no amqp channel")
	}

	if err := ch.ExchangeDeclare(
		ExchangeEvents,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, logger: logger}, nil
}

// RunFinishedMessage — сообщение о завершённом run.
type RunFinishedMessage struct {
	ID        string         `json:"id"`
	RunID     uuid.UUID      `json:"run_id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// RunFinished публикует терминальное событие run. Реализация
// workflow.Notifier: ошибки проглатываются после логирования.
func (p *Publisher) RunFinished(ctx context.Context, run *domain.Run) {
	msg := RunFinishedMessage{
		ID:        uuid.NewString(),
		RunID:     run.ID,
		Name:      run.Name,
		Status:    string(run.Status),
		Result:    run.Result,
		Timestamp: time.Now().UTC(),
	}

	if err := p.publish(ctx, msg); err != nil {
		p.logger.Warn("failed to publish run.finished",
			"run_id", run.ID,
			"error", err,
		)
	}
}

// publish сериализует и отправляет сообщение в exchange.
func (p *Publisher) publish(ctx context.Context, msg RunFinishedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("no amqp channel")
	}

	err = ch.PublishWithContext(
		ctx,
		ExchangeEvents,
		RoutingKeyRunFinished,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, RoutingKeyRunFinished, err)
	}

	p.logger.Debug("published run.finished",
		"run_id", msg.RunID,
		"status", msg.Status,
	)
	return nil
}
