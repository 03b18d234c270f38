package models

import "time"

// Типы операций в журнале платежей.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Статусы платежа.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Статусы проверки платежа администратором.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationDeclined = "declined"
)

// PaymentDetail представляет запись журнала платежей: пополнение (credit),
// ожидающее подтверждения администратора, либо списание комиссии (debit),
// подтверждённое автоматически. Суммы хранятся в минимальных единицах валюты.
type PaymentDetail struct {
	ID                 string     // Уникальный идентификатор записи
	UserUID            string     // Пользователь, к которому относится запись
	Amount             int64      // Сумма в минимальных единицах
	PaymentMethod      string     // Способ оплаты
	Transaction        string     // credit или debit
	Status             string     // pending, completed, failed, cancelled
	VerificationStatus string     // pending, verified, declined
	ProofOfPayment     string     // Ссылка на подтверждающий документ
	ReferenceNumber    string     // Номер операции
	Reason             string     // Причина отклонения
	CreatedAt          time.Time  // Дата создания записи
	ResolvedAt         *time.Time // Дата подтверждения или отклонения
}

// DummyTopUp используется для приёма данных пополнения баланса из JSON-запроса.
type DummyTopUp struct {
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string `json:"payment_method" validate:"required"`
	ProofOfPayment string `json:"proof_of_payment,omitempty"`
}

// DummyVerification используется для приёма решения администратора по платежу.
// Причина обязательна при отклонении.
type DummyVerification struct {
	Action string `json:"action" validate:"required,oneof=verify decline"`
	Reason string `json:"reason,omitempty"`
}

// Balance хранит текущий остаток средств пользователя.
// Запись создаётся при первом зачислении.
type Balance struct {
	UserUID   string    // Пользователь-владелец баланса
	Amount    int64     // Остаток в минимальных единицах
	UpdatedAt time.Time // Время последнего изменения
}

// Fee представляет именованную комиссию, используемую при выпуске QR-кодов
// и оплате тарифов.
type Fee struct {
	ID      int    // Уникальный идентификатор
	FeeCode string // Бизнес-код комиссии, например GENQR01
	Fee     int64  // Размер комиссии в минимальных единицах
	Status  string // active или inactive
}

// FeeCodeGenerateQR код комиссии за выпуск QR-кода.
const FeeCodeGenerateQR = "GENQR01"
