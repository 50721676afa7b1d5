package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/telemetry"
)

// Размер буфера событий на одно WS-соединение. Медленный клиент,
// переполнивший буфер, теряет события вместо того чтобы блокировать hub.
const wsSinkBuffer = 256

const wsWriteTimeout = 10 * time.Second

// SubscribeWS подписывает WebSocket-клиента на события топика.
// GET /api/v1/ws/{topic}
//
// Топик — это run_id для workflow-событий или thread_id для chat-событий.
// Каждое событие отправляется отдельным JSON-сообщением.
func (h *Handler) SubscribeWS(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	if topic == "" {
		BadRequest(w, "missing topic")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	logger := telemetry.WithTopic(h.logger, topic)

	sink := stream.NewChanSink(wsSinkBuffer)
	h.hub.Subscribe(topic, sink)
	defer h.hub.Unsubscribe(topic, sink)
	defer sink.Close()

	logger.Info("websocket subscribed", "remote_addr", r.RemoteAddr)

	// CloseRead читает входящие фреймы (клиент ничего не шлёт по
	// протоколу) и отменяет контекст при закрытии соединения.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			logger.Info("websocket disconnected")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-sink.Events():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				logger.Warn("websocket write failed", "error", err)
				return
			}
		}
	}
}
