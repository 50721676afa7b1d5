// Package mq реализует опциональный relay терминальных событий runs
// в RabbitMQ.
//
// Relay включается переменной окружения MQ_URL и работает best-effort:
// недоступный брокер не влияет ни на выполнение runs, ни на доставку
// событий websocket-подписчикам. Внутренняя координация системы
// очередью сообщений не пользуется — система однопроцессная.
package mq
