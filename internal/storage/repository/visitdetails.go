package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/visitgate/visitgate/internal/models"
)

// CreateVisitDetail вставляет новый запланированный визит и возвращает его ID.
func (s *Storage) CreateVisitDetail(ctx context.Context, visit models.VisitDetail) (string, error) {
	const op = "storage.CreateVisitDetail"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO visit_details (visitor_id, visit_date, purpose, department,
			      classification, no_of_visitors)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		visit.VisitorID, visit.VisitDate, visit.Purpose, visit.Department,
		visit.Classification, visit.NoOfVisitors).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetVisitDetail возвращает визит по его ID.
func (s *Storage) GetVisitDetail(ctx context.Context, id string) (*models.VisitDetail, error) {
	const op = "storage.GetVisitDetail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, visitor_id, visit_date, purpose, department, classification,
			      no_of_visitors, created_at
			  FROM visit_details
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.VisitDetail
	if err := row.Scan(&result.ID, &result.VisitorID, &result.VisitDate, &result.Purpose,
		&result.Department, &result.Classification, &result.NoOfVisitors,
		&result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListVisitDetails возвращает визиты посетителя, упорядоченные по дате.
func (s *Storage) ListVisitDetails(ctx context.Context, visitorID string, limit, offset int) ([]*models.VisitDetail, error) {
	const op = "storage.ListVisitDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, visitor_id, visit_date, purpose, department, classification,
			      no_of_visitors, created_at
			  FROM visit_details
			  WHERE visitor_id = $1
			  ORDER BY visit_date
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, visitorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.VisitDetail
	for rows.Next() {
		var item models.VisitDetail
		if err := rows.Scan(&item.ID, &item.VisitorID, &item.VisitDate, &item.Purpose,
			&item.Department, &item.Classification, &item.NoOfVisitors,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// HasVisitOnDay сообщает, есть ли у посетителя визит в указанный день.
func (s *Storage) HasVisitOnDay(ctx context.Context, visitorID string, day time.Time) (bool, error) {
	const op = "storage.HasVisitOnDay"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM visit_details
			      WHERE visitor_id = $1 AND visit_date = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, visitorID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
