// Package stream реализует fan-out доставку живых событий подписчикам.
//
// Hub ведёт для каждого топика (run ID или chat thread ID) множество
// получателей (Sink) и рассылает события best-effort: мёртвый
// получатель логируется и пропускается, буферизация и replay истории
// отсутствуют.
//
// Hub — это "нервная система" прогресса: оркестратор и chat-сервис
// публикуют в него события, транспортный слой (websocket) подключает
// к нему живые соединения.
package stream
