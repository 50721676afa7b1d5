// Package llm определяет абстракцию языковой модели как источника
// конечной последовательности текстовых фрагментов.
//
// Ядро системы не знает деталей конкретного провайдера: chat-сервису
// нужен только Streamer. Mock — встроенная реализация для разработки;
// боевые провайдеры подключаются той же сигнатурой.
package llm
