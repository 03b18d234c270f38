// Package qr содержит бизнес-логику жизненного цикла QR-кодов:
// платный выпуск пропуска для запланированного визита и его
// однократное сканирование на проходной.
package qr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/visitgate/visitgate/internal/lib/qrtoken"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/metrics"
	"github.com/visitgate/visitgate/internal/models"
)

// Repository определяет методы хранилища, нужные жизненному циклу QR-кодов.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetVisitor(ctx context.Context, id string) (*models.Visitor, error)
	GetVisitDetail(ctx context.Context, id string) (*models.VisitDetail, error)
	FindFeeByCodeAndStatus(ctx context.Context, feeCode, status string) (*models.Fee, error)
	DebitBalance(ctx context.Context, userUID string, amount int64) (int64, error)
	CreditBalance(ctx context.Context, userUID string, amount int64) (int64, error)
	CreatePayment(ctx context.Context, payment models.PaymentDetail) (string, error)
	UpdatePaymentStatus(ctx context.Context, id, status, verificationStatus string) error
	HasQRForVisitorDay(ctx context.Context, visitorID string, day time.Time) (bool, error)
	CreateQRCode(ctx context.Context, code models.QRCode) (string, error)
	GetQRCodeByData(ctx context.Context, qrData string) (*models.QRCode, error)
	MarkQRCodeUsed(ctx context.Context, id string, scannedAt time.Time) (int, error)
	MarkQRCodeExpired(ctx context.Context, id string) error
	ListAdminEmails(ctx context.Context) ([]*models.Notice, error)
}

// ImageRenderer описывает внешний генератор изображений QR-кодов.
type ImageRenderer interface {
	RenderURL(ctx context.Context, data string) (string, error)
}

// Publisher публикует уведомления в брокер. Доставка best-effort.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует выпуск и сканирование QR-кодов.
type Service struct {
	repo      Repository
	renderer  ImageRenderer
	publisher Publisher
	clock     *visitday.Clock
	log       *slog.Logger
}

// New создает новый Service.
func New(repo Repository, renderer ImageRenderer, publisher Publisher, clock *visitday.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		renderer:  renderer,
		publisher: publisher,
		clock:     clock,
		log:       log,
	}
}

// Issue выпускает QR-код для запланированного визита, списывая комиссию
// с баланса подписчика. Проверки выполняются в строгом порядке:
// корректность идентификаторов, существование посетителя и визита,
// дата визита не в прошлом, отсутствие дубликата на эту дату,
// активная комиссия, достаточный баланс.
func (s *Service) Issue(ctx context.Context, userUID string, req models.DummyGenerateQR) (*models.IssueResult, error) {
	if _, err := uuid.Parse(userUID); err != nil {
		return nil, fmt.Errorf("%w: malformed user id", models.ErrInvalidInput)
	}
	if _, err := uuid.Parse(req.VisitorID); err != nil {
		return nil, fmt.Errorf("%w: malformed visitor id", models.ErrInvalidInput)
	}
	if _, err := uuid.Parse(req.VisitDetailsID); err != nil {
		return nil, fmt.Errorf("%w: malformed visit details id", models.ErrInvalidInput)
	}

	visitor, err := s.repo.GetVisitor(ctx, req.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("visitor: %w", err)
	}
	if visitor.UserUID != userUID {
		return nil, fmt.Errorf("visitor: %w", models.ErrNotFound)
	}

	visit, err := s.repo.GetVisitDetail(ctx, req.VisitDetailsID)
	if err != nil {
		return nil, fmt.Errorf("visit details: %w", err)
	}
	if visit.VisitorID != visitor.ID {
		return nil, fmt.Errorf("visit details: %w", models.ErrNotFound)
	}

	day := s.clock.FromTime(visit.VisitDate)
	today := s.clock.Today()
	if day.Before(today) {
		return nil, models.ErrPastVisitDate
	}

	exists, err := s.repo.HasQRForVisitorDay(ctx, visitor.ID, day.Time())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrDuplicateQR
	}

	fee, err := s.repo.FindFeeByCodeAndStatus(ctx, models.FeeCodeGenerateQR, "active")
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}

	newBalance, err := s.repo.DebitBalance(ctx, userUID, fee.Fee)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("balance: %w", models.ErrNotFound)
		}
		return nil, err
	}
	s.log.Info("balance debited", slog.String("user_uid", userUID), slog.Int64("fee", fee.Fee))

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "balance"
	}
	// Списание комиссии подтверждается автоматически: это не платёж,
	// загруженный пользователем.
	paymentID, err := s.repo.CreatePayment(ctx, models.PaymentDetail{
		UserUID:            userUID,
		Amount:             fee.Fee,
		PaymentMethod:      paymentMethod,
		Transaction:        models.TransactionDebit,
		Status:             models.PaymentStatusCompleted,
		VerificationStatus: models.VerificationVerified,
		ProofOfPayment:     req.ProofOfPayment,
		ReferenceNumber:    uuid.NewString(),
	})
	if err != nil {
		s.refund(ctx, userUID, fee.Fee)
		return nil, err
	}

	token := qrtoken.New(visitor.ID, visit.ID)
	imageURL, err := s.renderer.RenderURL(ctx, token)
	if err != nil {
		s.log.Error("failed to render QR image", sl.Err(err))
		s.compensate(ctx, userUID, paymentID, fee.Fee)
		return nil, err
	}

	qrCodeID, err := s.repo.CreateQRCode(ctx, models.QRCode{
		UserUID:        userUID,
		VisitorID:      visitor.ID,
		VisitDetailsID: visit.ID,
		VisitDay:       day.Time(),
		QRData:         token,
		QRImageURL:     imageURL,
		Status:         models.QRStatusActive,
	})
	if err != nil {
		// Уникальный индекс закрыл гонку двух одновременных выпусков.
		s.compensate(ctx, userUID, paymentID, fee.Fee)
		return nil, err
	}

	metrics.QRIssued.Inc()
	s.log.Info("issued QR code", slog.String("qr_code_id", qrCodeID), slog.String("visitor_id", visitor.ID))

	s.notifyIssued(ctx, userUID, visitor, day)

	return &models.IssueResult{
		NewBalance: newBalance,
		PaymentID:  paymentID,
		QRCodeID:   qrCodeID,
		QRImageURL: imageURL,
		QRData:     token,
	}, nil
}

// refund возвращает списанную комиссию при сбое после списания.
func (s *Service) refund(ctx context.Context, userUID string, amount int64) {
	if _, err := s.repo.CreditBalance(ctx, userUID, amount); err != nil {
		s.log.Error("failed to refund fee after issuance failure",
			slog.String("user_uid", userUID), sl.Err(err))
	}
}

// compensate возвращает комиссию и отменяет запись списания,
// когда выпуск сорвался после создания платежа.
func (s *Service) compensate(ctx context.Context, userUID, paymentID string, amount int64) {
	s.refund(ctx, userUID, amount)
	if err := s.repo.UpdatePaymentStatus(ctx, paymentID, models.PaymentStatusCancelled, models.VerificationVerified); err != nil {
		s.log.Error("failed to cancel payment after issuance failure",
			slog.String("payment_id", paymentID), sl.Err(err))
	}
}

// Scan проверяет токен QR-кода и однократно переводит его в used,
// если дата визита совпадает с сегодняшней. Прошедшая дата помечает
// код истёкшим, будущая оставляет его активным.
func (s *Service) Scan(ctx context.Context, qrData string) (*models.VisitSummary, error) {
	code, err := s.repo.GetQRCodeByData(ctx, qrData)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	if code.IsTerminal() {
		metrics.ScanRejected.WithLabelValues("terminal").Inc()
		return nil, fmt.Errorf("%w: status is %s", models.ErrAlreadyTerminal, code.Status)
	}

	day := s.clock.FromTime(code.VisitDay)
	today := s.clock.Today()

	if day.Before(today) {
		if err := s.repo.MarkQRCodeExpired(ctx, code.ID); err != nil {
			s.log.Error("failed to expire QR code on scan", sl.Err(err))
		}
		metrics.ScanRejected.WithLabelValues("expired").Inc()
		return nil, models.ErrQRExpired
	}
	if !day.Equal(today) {
		metrics.ScanRejected.WithLabelValues("not_yet").Inc()
		return nil, models.ErrNotYet
	}

	rows, err := s.repo.MarkQRCodeUsed(ctx, code.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Параллельное сканирование или развёртка успели раньше.
		metrics.ScanRejected.WithLabelValues("terminal").Inc()
		return nil, fmt.Errorf("%w: already consumed", models.ErrAlreadyTerminal)
	}
	metrics.QRScanned.Inc()

	summary, err := s.buildSummary(ctx, code, day)
	if err != nil {
		return nil, err
	}

	s.notifyScanned(ctx, code.UserUID, summary)

	return summary, nil
}

func (s *Service) buildSummary(ctx context.Context, code *models.QRCode, day visitday.Day) (*models.VisitSummary, error) {
	visitor, err := s.repo.GetVisitor(ctx, code.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("visitor: %w", err)
	}
	visit, err := s.repo.GetVisitDetail(ctx, code.VisitDetailsID)
	if err != nil {
		return nil, fmt.Errorf("visit details: %w", err)
	}
	host, err := s.repo.GetUser(ctx, code.UserUID)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}

	return &models.VisitSummary{
		HostName:    host.Username,
		VisitorName: visitor.DisplayName(),
		VisitDate:   day.String(),
		Purpose:     visit.Purpose,
	}, nil
}

// notifyIssued рассылает уведомления о выпуске пропуска подписчику
// и всем администраторам. Ошибки логируются и не влияют на результат.
func (s *Service) notifyIssued(ctx context.Context, userUID string, visitor *models.Visitor, day visitday.Day) {
	host, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}

	subscriberNotice := models.Notice{
		Email:    host.Email,
		Username: host.Username,
		Subject:  "Пропуск выпущен",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nQR-пропуск для %s на %s выпущен. Комиссия списана с баланса.",
			host.Username, visitor.DisplayName(), day.String()),
	}
	if err := s.publisher.Publish("events", subscriberNotice); err != nil {
		s.log.Warn("failed to publish subscriber notice", sl.Err(err))
	}

	admins, err := s.repo.ListAdminEmails(ctx)
	if err != nil {
		s.log.Warn("failed to list admins for notification", sl.Err(err))
		return
	}
	for _, admin := range admins {
		notice := models.Notice{
			Email:    admin.Email,
			Username: admin.Username,
			Subject:  "Выпущен новый пропуск",
			Body: fmt.Sprintf("Подписчик %s выпустил QR-пропуск для %s на %s.",
				host.Username, visitor.DisplayName(), day.String()),
		}
		if err := s.publisher.Publish("events", notice); err != nil {
			s.log.Warn("failed to publish admin notice", sl.Err(err))
		}
	}
}

func (s *Service) notifyScanned(ctx context.Context, userUID string, summary *models.VisitSummary) {
	host, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	notice := models.Notice{
		Email:    host.Email,
		Username: host.Username,
		Subject:  "Посетитель прошёл",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nВаш посетитель %s прошёл по пропуску %s.",
			host.Username, summary.VisitorName, summary.VisitDate),
	}
	if err := s.publisher.Publish("events", notice); err != nil {
		s.log.Warn("failed to publish scan notice", sl.Err(err))
	}
}
