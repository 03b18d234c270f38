package models

// Notice сообщение для отправки по электронной почте.
// Публикуется в брокер рабочими процессами и потребляется сервисом отправки.
// Доставка best-effort: ошибка публикации или отправки не влияет
// на основной результат операции.
type Notice struct {
	Email    string `json:"email"`    // Адрес получателя
	Username string `json:"username"` // Имя получателя для обращения
	Subject  string `json:"subject"`  // Тема письма
	Body     string `json:"body"`     // Текст письма
}
