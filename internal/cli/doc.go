// Package cli реализует инструмент командной строки Fastgraph.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Fastgraph API.
// Работает через HTTP и WebSocket, не импортирует внутренние пакеты
// сервиса. Используется для управления runs и chat-тредами.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Fastgraph API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок. Watch подключается к WebSocket-потоку топика
// и доставляет live-события.
//
//	client := cli.NewClient("http://localhost:8080")
//	runs, err := client.ListRuns()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: fastgraph run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - run: list, submit, show, cancel, watch, artifacts
//   - chat: send, history, watch
//
// Каждая группа создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
