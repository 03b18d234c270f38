package models

import "time"

// Статусы QR-кода. Код создаётся в статусе active, переходит в used при
// успешном сканировании либо в expired, когда дата визита прошла.
// Статус revoked выставляется только вручную администратором.
const (
	QRStatusActive  = "active"
	QRStatusUsed    = "used"
	QRStatusExpired = "expired"
	QRStatusRevoked = "revoked"
)

// QRCode представляет пропуск, привязанный ровно к одному визиту.
type QRCode struct {
	ID             string     // Уникальный идентификатор записи
	UserUID        string     // Подписчик, выпустивший код
	VisitorID      string     // Посетитель, для которого выпущен код
	VisitDetailsID string     // Визит, к которому привязан код
	VisitDay       time.Time  // Дата визита (денормализована при выпуске)
	QRData         string     // Непрозрачный токен, закодированный в изображении
	QRImageURL     string     // Ссылка на изображение QR-кода
	Status         string     // active, used, expired, revoked
	CreatedAt      time.Time  // Дата выпуска
	ScannedAt      *time.Time // Время успешного сканирования
}

// IsTerminal сообщает, находится ли код в финальном статусе.
func (q *QRCode) IsTerminal() bool {
	return q.Status != QRStatusActive
}

// DummyGenerateQR используется для приёма запроса на выпуск QR-кода.
type DummyGenerateQR struct {
	VisitorID      string `json:"visitor_id" validate:"required,uuid"`
	VisitDetailsID string `json:"visit_details_id" validate:"required,uuid"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	ProofOfPayment string `json:"proof_of_payment,omitempty"`
}

// IssueResult результат успешного выпуска QR-кода.
type IssueResult struct {
	NewBalance int64  `json:"new_balance"`
	PaymentID  string `json:"payment_id"`
	QRCodeID   string `json:"qr_code_id"`
	QRImageURL string `json:"qr_image_url"`
	QRData     string `json:"qr_data"`
}

// VisitSummary проекция данных визита, возвращаемая при успешном сканировании.
type VisitSummary struct {
	HostName    string `json:"host_name"`    // Имя подписчика-владельца
	VisitorName string `json:"visitor_name"` // Отображаемое имя посетителя
	VisitDate   string `json:"visit_date"`   // Дата визита в формате 02-01-2006
	Purpose     string `json:"purpose"`      // Цель визита
}
