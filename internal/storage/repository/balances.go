package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/visitgate/visitgate/internal/models"
)

// GetBalance возвращает текущий остаток пользователя.
// Отсутствие записи не считается ошибкой: баланс равен нулю.
func (s *Storage) GetBalance(ctx context.Context, userUID string) (int64, error) {
	const op = "storage.GetBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT amount FROM balances WHERE user_uid = $1`
	var amount int64
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return amount, nil
}

// DebitBalance атомарно списывает сумму с баланса и возвращает новый остаток.
// Условное обновление исключает одновременное двойное списание: запрос
// уменьшает остаток только когда его хватает на всю сумму.
// Возвращает ErrNotFound, если записи баланса нет,
// и ErrInsufficientFunds, если средств недостаточно.
func (s *Storage) DebitBalance(ctx context.Context, userUID string, amount int64) (int64, error) {
	const op = "storage.DebitBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE balances
			  SET amount = amount - $2, updated_at = now()
			  WHERE user_uid = $1 AND amount >= $2
			  RETURNING amount`
	var newAmount int64
	err := s.DB.QueryRowContext(ctx, query, userUID, amount).Scan(&newAmount)
	if err == nil {
		return newAmount, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// Обновление не сработало: различаем отсутствие записи и нехватку средств.
	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM balances WHERE user_uid = $1)`, userUID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return 0, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return 0, fmt.Errorf("%s: %w", op, models.ErrInsufficientFunds)
}

// CreditBalance атомарно зачисляет сумму на баланс и возвращает новый остаток.
// Запись баланса создаётся при первом зачислении.
func (s *Storage) CreditBalance(ctx context.Context, userUID string, amount int64) (int64, error) {
	const op = "storage.CreditBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO balances (user_uid, amount, updated_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (user_uid)
			  DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = now()
			  RETURNING amount`
	var newAmount int64
	if err := s.DB.QueryRowContext(ctx, query, userUID, amount).Scan(&newAmount); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newAmount, nil
}
