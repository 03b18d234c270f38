package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/visitgate/visitgate/internal/models"
)

// CreatePayment вставляет новую запись журнала платежей и возвращает её ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.PaymentDetail) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_details (user_uid, amount, payment_method, transaction,
			      status, verification_status, proof_of_payment, reference_number, reason)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.Amount, payment.PaymentMethod, payment.Transaction,
		payment.Status, payment.VerificationStatus, payment.ProofOfPayment,
		payment.ReferenceNumber, payment.Reason).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPayment возвращает запись журнала платежей по её ID.
func (s *Storage) GetPayment(ctx context.Context, id string) (*models.PaymentDetail, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, amount, payment_method, transaction, status,
			      verification_status, proof_of_payment, reference_number, reason,
			      created_at, resolved_at
			  FROM payment_details
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.PaymentDetail
	var resolvedAt sql.NullTime
	if err := row.Scan(&result.ID, &result.UserUID, &result.Amount, &result.PaymentMethod,
		&result.Transaction, &result.Status, &result.VerificationStatus,
		&result.ProofOfPayment, &result.ReferenceNumber, &result.Reason,
		&result.CreatedAt, &resolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resolvedAt.Valid {
		result.ResolvedAt = &resolvedAt.Time
	}
	return &result, nil
}

// ResolvePayment однократно переводит запись из статуса проверки pending
// в verified либо declined. Условное обновление гарантирует, что повторное
// решение по той же записи не сработает: возвращается количество
// изменённых строк.
func (s *Storage) ResolvePayment(ctx context.Context, id, verificationStatus, status, reason string) (int, error) {
	const op = "storage.ResolvePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_details
			  SET verification_status = $2, status = $3, reason = $4, resolved_at = now()
			  WHERE id = $1 AND verification_status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, id, verificationStatus, status, reason)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdatePaymentStatus выставляет статусы записи журнала платежей.
// Используется компенсацией при сбое выпуска QR-кода после списания.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id, status, verificationStatus string) error {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_details
			  SET status = $2, verification_status = $3, resolved_at = now()
			  WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id, status, verificationStatus); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPaymentsByUser возвращает записи журнала платежей пользователя с пагинацией.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentDetail, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, amount, payment_method, transaction, status,
			      verification_status, proof_of_payment, reference_number, reason,
			      created_at, resolved_at
			  FROM payment_details
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanPayments(rows, op)
}

// ListPendingCredits возвращает пополнения, ожидающие решения администратора.
func (s *Storage) ListPendingCredits(ctx context.Context, limit, offset int) ([]*models.PaymentDetail, error) {
	const op = "storage.ListPendingCredits"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, amount, payment_method, transaction, status,
			      verification_status, proof_of_payment, reference_number, reason,
			      created_at, resolved_at
			  FROM payment_details
			  WHERE transaction = 'credit' AND verification_status = 'pending'
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanPayments(rows, op)
}

func scanPayments(rows *sql.Rows, op string) ([]*models.PaymentDetail, error) {
	var result []*models.PaymentDetail
	for rows.Next() {
		var item models.PaymentDetail
		var resolvedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Amount, &item.PaymentMethod,
			&item.Transaction, &item.Status, &item.VerificationStatus,
			&item.ProofOfPayment, &item.ReferenceNumber, &item.Reason,
			&item.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if resolvedAt.Valid {
			item.ResolvedAt = &resolvedAt.Time
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
