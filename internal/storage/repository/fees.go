package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/visitgate/visitgate/internal/models"
)

// FindFeeByCodeAndStatus возвращает комиссию по бизнес-коду и статусу.
// Результат не кешируется: размер комиссии может быть изменён
// администратором в любой момент.
func (s *Storage) FindFeeByCodeAndStatus(ctx context.Context, feeCode, status string) (*models.Fee, error) {
	const op = "storage.FindFeeByCodeAndStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, fee_code, fee, status
			  FROM fees
			  WHERE fee_code = $1 AND status = $2`
	row := s.DB.QueryRowContext(ctx, query, feeCode, status)

	var result models.Fee
	if err := row.Scan(&result.ID, &result.FeeCode, &result.Fee, &result.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
