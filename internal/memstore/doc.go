// Package memstore реализует in-memory варианты хранилищ.
//
// Семантика повторяет Postgres-репозитории пакета repo (включая
// общие sentinel-ошибки repo.ErrNotFound / repo.ErrAlreadyExists и
// JSON-нормализацию структурированных значений), поэтому один и
// тот же код работает с любой реализацией.
//
// Используется в тестах и как режим работы без базы данных.
package memstore
