// Package chat реализует обработку диалоговых сообщений с потоковой
// выдачей ответа модели.
//
// Каждое входящее сообщение обрабатывается как задача в общей очереди:
// история треда загружается из хранилища, ответ модели стримится
// по фрагментам в Subscription Hub (token-события на топике треда),
// затем полный ответ персистится одним сообщением.
package chat
