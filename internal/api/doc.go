// Package api реализует HTTP и WebSocket слой сервиса.
//
// REST-маршруты под /api/v1 управляют runs, chat-тредами и артефактами;
// GET /api/v1/ws/{topic} транслирует live-события подписчикам.
// Ответы единообразны: {"data": ...} для успеха,
// {"error": {"code", "message"}} для ошибок.
package api
