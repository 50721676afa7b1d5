// Package artifact реализует файловое хранилище байтовых артефактов,
// произведённых runs (отчёты, результаты, загруженные файлы).
//
// Хранилище адресует артефакты непрозрачным ID, который кодирует
// run ID, токен уникальности и исходное имя файла.
package artifact
