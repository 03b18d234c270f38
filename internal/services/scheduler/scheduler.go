// Package scheduler содержит фоновые развёртки: истечение QR-кодов
// с прошедшей датой визита, снятие истёкших подписок и пробных периодов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/metrics"
	"github.com/visitgate/visitgate/internal/models"
)

// Repository определяет методы хранилища для фоновых развёрток.
type Repository interface {
	ExpireQRCodesBefore(ctx context.Context, day time.Time) (int, error)
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]*models.Notice, error)
	ExpireLapsedTrials(ctx context.Context, now time.Time) ([]*models.Notice, error)
}

// Publisher публикует уведомления в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service периодически запускает развёртки. Каждая развёртка
// независима: сбой одной не мешает остальным.
type Service struct {
	repo      Repository
	publisher Publisher
	clock     *visitday.Clock
	interval  time.Duration
	log       *slog.Logger
}

// New создает новый Service.
func New(repo Repository, publisher Publisher, clock *visitday.Clock, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		log:       log,
	}
}

// Run запускает развёртки сразу и затем по тикеру, пока контекст жив.
func (s *Service) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход всех развёрток.
func (s *Service) RunOnce(ctx context.Context) {
	s.expireQRCodes(ctx)
	s.expireSubscriptions(ctx)
	s.expireTrials(ctx)
}

// expireQRCodes помечает истёкшими активные QR-коды, чья дата визита
// уже прошла. Сканирование делает то же самое лениво, развёртка
// закрывает коды, которые никто не предъявил.
func (s *Service) expireQRCodes(ctx context.Context) {
	s.log.Info("starting sweep of stale QR codes")
	count, err := s.repo.ExpireQRCodesBefore(ctx, s.clock.Today().Time())
	if err != nil {
		s.log.Error("failed to expire stale QR codes", sl.Err(err))
		return
	}
	if count == 0 {
		s.log.Info("no stale QR codes found")
		return
	}
	metrics.QRExpired.Add(float64(count))
	s.log.Info("expired stale QR codes", "count", count)
}

func (s *Service) expireSubscriptions(ctx context.Context) {
	s.log.Info("starting sweep of lapsed subscriptions")
	affected, err := s.repo.ExpireLapsedSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to expire lapsed subscriptions", sl.Err(err))
		return
	}
	if len(affected) == 0 {
		s.log.Info("no lapsed subscriptions found")
		return
	}
	s.log.Info("expired lapsed subscriptions", "count", len(affected))
	for _, notice := range affected {
		notice.Subject = "Подписка истекла"
		notice.Body = fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка истекла. Для продления пополните баланс и оплатите тариф.",
			notice.Username)
		if err := s.publisher.Publish("expiring", notice); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

func (s *Service) expireTrials(ctx context.Context) {
	s.log.Info("starting sweep of lapsed trial periods")
	affected, err := s.repo.ExpireLapsedTrials(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to expire lapsed trial periods", sl.Err(err))
		return
	}
	if len(affected) == 0 {
		s.log.Info("no lapsed trial periods found")
		return
	}
	s.log.Info("expired lapsed trial periods", "count", len(affected))
	for _, notice := range affected {
		notice.Subject = "Пробный период закончился"
		notice.Body = fmt.Sprintf("Здравствуйте, %s!\n\nВаш пробный период закончился. Чтобы продолжить пользоваться сервисом, оплатите тариф.",
			notice.Username)
		if err := s.publisher.Publish("expiring", notice); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
