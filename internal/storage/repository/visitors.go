package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/visitgate/visitgate/internal/models"
)

// CreateVisitor вставляет нового посетителя и возвращает его ID.
func (s *Storage) CreateVisitor(ctx context.Context, visitor models.Visitor) (string, error) {
	const op = "storage.CreateVisitor"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO visitors (user_uid, visitor_type, first_name, last_name, group_name)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		visitor.UserUID, visitor.VisitorType, visitor.FirstName, visitor.LastName,
		visitor.GroupName).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetVisitor возвращает посетителя по его ID.
func (s *Storage) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	const op = "storage.GetVisitor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, visitor_type, first_name, last_name, group_name, created_at
			  FROM visitors
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Visitor
	if err := row.Scan(&result.ID, &result.UserUID, &result.VisitorType, &result.FirstName,
		&result.LastName, &result.GroupName, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListVisitors возвращает список посетителей подписчика с пагинацией.
func (s *Storage) ListVisitors(ctx context.Context, userUID string, limit, offset int) ([]*models.Visitor, error) {
	const op = "storage.ListVisitors"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, visitor_type, first_name, last_name, group_name, created_at
			  FROM visitors
			  WHERE user_uid = $1
			  ORDER BY created_at
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Visitor
	for rows.Next() {
		var item models.Visitor
		if err := rows.Scan(&item.ID, &item.UserUID, &item.VisitorType, &item.FirstName,
			&item.LastName, &item.GroupName, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
