// Package domain содержит основные типы данных системы.
//
// Главные сущности:
//   - Run — экземпляр выполнения workflow (статус, входные данные, результат)
//   - Checkpoint — снимок промежуточного состояния run на одной стадии
//   - ChatMessage — сообщение в chat-треде
//
// Все структурированные поля (Meta, Result, State) — JSON-совместимые
// значения: строки, числа, bool, null, массивы и объекты. Сериализация
// через encoding/json сохраняет значения без потерь; порядок ключей
// map не гарантируется.
package domain
