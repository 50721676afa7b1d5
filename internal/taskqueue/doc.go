// Package taskqueue реализует внутрипроцессную последовательную
// очередь задач.
//
// Один worker-цикл выбирает задачи в порядке FIFO и выполняет каждую
// до конца, прежде чем взять следующую. Цикл запускается лениво при
// первом Enqueue и самозавершается на пустой очереди. Ошибка или
// паника задачи логируется и не останавливает цикл.
//
// Очередь не durable и не переживает перезапуск процесса — это
// сознательное ограничение: система работает в одном процессе.
package taskqueue
