// Package repo реализует Postgres-хранилища поверх pgx.
//
// Репозитории:
//   - RunRepo — записи runs (статус, meta, result)
//   - CheckpointRepo — снимки состояния по (run, step)
//   - ChatRepo — сообщения chat-тредов
//
// Структурированные поля хранятся как jsonb; значения проходят
// сериализацию без потерь (порядок ключей map не гарантируется).
package repo
