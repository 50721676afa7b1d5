// Package workflow реализует оркестратор runs.
//
// Service отвечает за:
//   - Приём runs (Submit) и постановку выполнения в очередь задач
//   - Прохождение фиксированных стадий plan → execute → validate
//   - Checkpoint и node_update событие после каждой стадии
//   - Финализацию run (completed/failed/cancelled) с ровно одним
//     терминальным событием
//   - Кооперативную отмену через контекст run
//
// Порядок финализации фиксирован: статус и result персистятся в
// Run Store до терминальной рассылки.
//
// Package workflow — это "мозг" системы, который координирует
// хранилища, очередь и подписчиков.
package workflow
