package models

import "time"

// Роли пользователей системы.
const (
	RoleAdmin      = "admin"
	RoleSubscriber = "subscriber"
	RoleStaff      = "staff"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта
	Username           string     // Имя пользователя (уникальное)
	PasswordHash       string     // Хэш пароля пользователя
	Role               string     // Роль: admin, subscriber или staff
	SubscriptionActive bool       // Активна ли оплаченная подписка
	SubscriptionExpiry *time.Time // Дата истечения оплаченной подписки
	IsOnTrial          bool       // Действует ли пробный период
	TrialStartedAt     *time.Time // Дата начала пробного периода
	TrialEndsAt        *time.Time // Дата окончания пробного периода
	PlanType           string     // Выбранный тарифный план
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
