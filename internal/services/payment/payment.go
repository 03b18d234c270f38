// Package payment содержит бизнес-логику баланса и журнала платежей:
// проверку остатка, заявки на пополнение и их подтверждение
// либо отклонение администратором.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Repository определяет методы хранилища, нужные операциям с балансом.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetBalance(ctx context.Context, userUID string) (int64, error)
	CreditBalance(ctx context.Context, userUID string, amount int64) (int64, error)
	CreatePayment(ctx context.Context, payment models.PaymentDetail) (string, error)
	GetPayment(ctx context.Context, id string) (*models.PaymentDetail, error)
	ResolvePayment(ctx context.Context, id, verificationStatus, status, reason string) (int, error)
	ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentDetail, error)
	ListPendingCredits(ctx context.Context, limit, offset int) ([]*models.PaymentDetail, error)
	ListAdminEmails(ctx context.Context) ([]*models.Notice, error)
}

// Publisher публикует уведомления в брокер. Доставка best-effort.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует операции с балансом и журналом платежей.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// GetBalance возвращает текущий остаток пользователя.
// Отсутствие записи означает нулевой баланс.
func (s *Service) GetBalance(ctx context.Context, userUID string) (int64, error) {
	if _, err := uuid.Parse(userUID); err != nil {
		return 0, fmt.Errorf("%w: malformed user id", models.ErrInvalidInput)
	}
	return s.repo.GetBalance(ctx, userUID)
}

// TopUp создаёт заявку на пополнение баланса. Средства зачисляются
// только после подтверждения администратором, поэтому запись создаётся
// в статусе pending.
func (s *Service) TopUp(ctx context.Context, userUID string, req models.DummyTopUp) (string, error) {
	if _, err := uuid.Parse(userUID); err != nil {
		return "", fmt.Errorf("%w: malformed user id", models.ErrInvalidInput)
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("user: %w", err)
	}

	paymentID, err := s.repo.CreatePayment(ctx, models.PaymentDetail{
		UserUID:            userUID,
		Amount:             req.Amount,
		PaymentMethod:      req.PaymentMethod,
		Transaction:        models.TransactionCredit,
		Status:             models.PaymentStatusPending,
		VerificationStatus: models.VerificationPending,
		ProofOfPayment:     req.ProofOfPayment,
		ReferenceNumber:    uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	s.log.Info("created top-up request",
		slog.String("payment_id", paymentID), slog.Int64("amount", req.Amount))

	s.notifyAdmins(ctx, "Новая заявка на пополнение",
		fmt.Sprintf("Пользователь %s загрузил пополнение на %d. Заявка ожидает проверки.",
			user.Username, req.Amount))

	return paymentID, nil
}

// Verify подтверждает ожидающее пополнение и зачисляет средства на баланс.
// Условное обновление гарантирует однократное зачисление: повторное
// решение по той же записи возвращает ErrAlreadyResolved.
func (s *Service) Verify(ctx context.Context, paymentID string) error {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	if payment.Transaction != models.TransactionCredit {
		return fmt.Errorf("%w: only credits are verified", models.ErrInvalidInput)
	}

	rows, err := s.repo.ResolvePayment(ctx, paymentID,
		models.VerificationVerified, models.PaymentStatusCompleted, "")
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyResolved
	}

	newBalance, err := s.repo.CreditBalance(ctx, payment.UserUID, payment.Amount)
	if err != nil {
		// Решение уже записано, зачисление не прошло. Требует ручного
		// вмешательства, поэтому уровень error.
		s.log.Error("verified payment but failed to credit balance",
			slog.String("payment_id", paymentID), sl.Err(err))
		return err
	}
	s.log.Info("verified top-up",
		slog.String("payment_id", paymentID), slog.Int64("new_balance", newBalance))

	s.notifyUser(ctx, payment.UserUID, "Пополнение подтверждено",
		fmt.Sprintf("Ваше пополнение на %d подтверждено. Текущий баланс: %d.",
			payment.Amount, newBalance))
	return nil
}

// Decline отклоняет ожидающее пополнение. Причина обязательна.
func (s *Service) Decline(ctx context.Context, paymentID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: reason is required to decline", models.ErrInvalidInput)
	}
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	if payment.Transaction != models.TransactionCredit {
		return fmt.Errorf("%w: only credits are verified", models.ErrInvalidInput)
	}

	rows, err := s.repo.ResolvePayment(ctx, paymentID,
		models.VerificationDeclined, models.PaymentStatusCancelled, reason)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyResolved
	}
	s.log.Info("declined top-up", slog.String("payment_id", paymentID))

	s.notifyUser(ctx, payment.UserUID, "Пополнение отклонено",
		fmt.Sprintf("Ваше пополнение на %d отклонено. Причина: %s.", payment.Amount, reason))
	return nil
}

// List возвращает журнал платежей: администратор видит все ожидающие
// пополнения, пользователь только собственные записи.
func (s *Service) List(ctx context.Context, userUID, role string, limit, offset int) ([]*models.PaymentDetail, error) {
	if role == models.RoleAdmin {
		return s.repo.ListPendingCredits(ctx, limit, offset)
	}
	return s.repo.ListPaymentsByUser(ctx, userUID, limit, offset)
}

func (s *Service) notifyUser(ctx context.Context, userUID, subject, body string) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	notice := models.Notice{
		Email:    user.Email,
		Username: user.Username,
		Subject:  subject,
		Body:     fmt.Sprintf("Здравствуйте, %s!\n\n%s", user.Username, body),
	}
	if err := s.publisher.Publish("events", notice); err != nil {
		s.log.Warn("failed to publish user notice", sl.Err(err))
	}
}

func (s *Service) notifyAdmins(ctx context.Context, subject, body string) {
	admins, err := s.repo.ListAdminEmails(ctx)
	if err != nil {
		s.log.Warn("failed to list admins for notification", sl.Err(err))
		return
	}
	for _, admin := range admins {
		notice := models.Notice{
			Email:    admin.Email,
			Username: admin.Username,
			Subject:  subject,
			Body:     body,
		}
		if err := s.publisher.Publish("events", notice); err != nil {
			s.log.Warn("failed to publish admin notice", sl.Err(err))
		}
	}
}
