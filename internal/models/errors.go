// Package models содержит доменные структуры системы пропусков:
// пользователей, посетителей, запланированные визиты, QR-коды,
// платежи и балансы, а также DTO для приёма JSON-запросов.
package models

import "errors"

// Доменные ошибки бизнес-процессов. Обработчики сопоставляют их
// с HTTP-статусами через errors.Is.
var (
	// ErrInvalidInput некорректные идентификаторы или отсутствующие поля запроса.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound запрошенная сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrPastVisitDate дата визита уже прошла, выпуск QR-кода запрещён.
	ErrPastVisitDate = errors.New("cannot generate QR for a past visit date")
	// ErrDuplicateQR на эту дату у посетителя уже есть действующий или использованный QR-код.
	ErrDuplicateQR = errors.New("QR code for this visit date already exists")
	// ErrDuplicateVisit на эту дату у посетителя уже запланирован визит.
	ErrDuplicateVisit = errors.New("visit for this date already exists")
	// ErrInsufficientFunds на балансе недостаточно средств для списания комиссии.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyTerminal QR-код уже находится в финальном статусе.
	ErrAlreadyTerminal = errors.New("QR code is no longer usable")
	// ErrNotYet дата визита ещё не наступила, сканирование отклонено.
	ErrNotYet = errors.New("visit date does not match today")
	// ErrQRExpired дата визита прошла, QR-код помечен истёкшим.
	ErrQRExpired = errors.New("QR code expired")
	// ErrAlreadyResolved платёж уже подтверждён или отклонён ранее.
	ErrAlreadyResolved = errors.New("payment already resolved")
)
