// Package visitor содержит бизнес-логику справочника посетителей
// и планирования визитов.
package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/models"
)

const cacheTTL = 10 * time.Minute

// Repository определяет методы хранилища для посетителей и визитов.
type Repository interface {
	CreateVisitor(ctx context.Context, visitor models.Visitor) (string, error)
	GetVisitor(ctx context.Context, id string) (*models.Visitor, error)
	ListVisitors(ctx context.Context, userUID string, limit, offset int) ([]*models.Visitor, error)
	CreateVisitDetail(ctx context.Context, visit models.VisitDetail) (string, error)
	ListVisitDetails(ctx context.Context, visitorID string, limit, offset int) ([]*models.VisitDetail, error)
	HasVisitOnDay(ctx context.Context, visitorID string, day time.Time) (bool, error)
}

// Cache кеширует карточки посетителей. Ошибки кеша не фатальны.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует операции с посетителями и визитами.
type Service struct {
	repo  Repository
	cache Cache
	clock *visitday.Clock
	log   *slog.Logger
}

// New создает новый Service.
func New(repo Repository, cache Cache, clock *visitday.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		clock: clock,
		log:   log,
	}
}

func visitorCacheKey(id string) string {
	return "visitor:" + id
}

// Create регистрирует нового посетителя, принадлежащего подписчику.
// Набор обязательных полей зависит от типа: имя и фамилия для individual,
// название группы для group.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyVisitor) (string, error) {
	if _, err := uuid.Parse(userUID); err != nil {
		return "", fmt.Errorf("%w: malformed user id", models.ErrInvalidInput)
	}

	visitor := models.Visitor{
		UserUID:     userUID,
		VisitorType: req.VisitorType,
	}
	switch req.VisitorType {
	case models.VisitorTypeIndividual:
		visitor.FirstName = req.FirstName
		visitor.LastName = req.LastName
	case models.VisitorTypeGroup:
		visitor.GroupName = req.GroupName
	default:
		return "", fmt.Errorf("%w: unknown visitor type %q", models.ErrInvalidInput, req.VisitorType)
	}

	id, err := s.repo.CreateVisitor(ctx, visitor)
	if err != nil {
		return "", err
	}
	s.log.Info("created visitor", slog.String("visitor_id", id), slog.String("type", req.VisitorType))
	return id, nil
}

// Read возвращает карточку посетителя, проверяя принадлежность подписчику.
// Карточка кешируется: она читается при каждом выпуске и сканировании.
func (s *Service) Read(ctx context.Context, userUID, visitorID string) (*models.Visitor, error) {
	if _, err := uuid.Parse(visitorID); err != nil {
		return nil, fmt.Errorf("%w: malformed visitor id", models.ErrInvalidInput)
	}

	var cached models.Visitor
	found, err := s.cache.Get(visitorCacheKey(visitorID), &cached)
	if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		if cached.UserUID != userUID {
			return nil, fmt.Errorf("visitor: %w", models.ErrNotFound)
		}
		return &cached, nil
	}

	visitor, err := s.repo.GetVisitor(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("visitor: %w", err)
	}
	if visitor.UserUID != userUID {
		return nil, fmt.Errorf("visitor: %w", models.ErrNotFound)
	}

	if err := s.cache.Set(visitorCacheKey(visitorID), visitor, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return visitor, nil
}

// List возвращает посетителей подписчика с пагинацией.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Visitor, error) {
	return s.repo.ListVisitors(ctx, userUID, limit, offset)
}

// ScheduleVisit планирует визит для посетителя подписчика. Дата
// принимается строкой в формате 02-01-2006 и не может быть в прошлом.
// Повторный визит на ту же дату отклоняется.
func (s *Service) ScheduleVisit(ctx context.Context, userUID string, req models.DummyVisitDetail) (string, error) {
	visitor, err := s.Read(ctx, userUID, req.VisitorID)
	if err != nil {
		return "", err
	}

	day, err := s.clock.Parse(req.VisitDate)
	if err != nil {
		return "", fmt.Errorf("%w: bad visit date %q", models.ErrInvalidInput, req.VisitDate)
	}
	if day.Before(s.clock.Today()) {
		return "", models.ErrPastVisitDate
	}

	exists, err := s.repo.HasVisitOnDay(ctx, visitor.ID, day.Time())
	if err != nil {
		return "", err
	}
	if exists {
		return "", models.ErrDuplicateVisit
	}

	id, err := s.repo.CreateVisitDetail(ctx, models.VisitDetail{
		VisitorID:      visitor.ID,
		VisitDate:      day.Time(),
		Purpose:        req.Purpose,
		Department:     req.Department,
		Classification: req.Classification,
		NoOfVisitors:   req.NoOfVisitors,
	})
	if err != nil {
		return "", err
	}
	s.log.Info("scheduled visit",
		slog.String("visit_details_id", id),
		slog.String("visitor_id", visitor.ID),
		slog.String("visit_date", day.String()))
	return id, nil
}

// ListVisits возвращает визиты посетителя, проверяя принадлежность подписчику.
func (s *Service) ListVisits(ctx context.Context, userUID, visitorID string, limit, offset int) ([]*models.VisitDetail, error) {
	visitor, err := s.Read(ctx, userUID, visitorID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListVisitDetails(ctx, visitor.ID, limit, offset)
}
