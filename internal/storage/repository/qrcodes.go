package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/visitgate/visitgate/internal/models"
)

// Код ошибки PostgreSQL unique_violation.
const pgUniqueViolation = "23505"

// CreateQRCode вставляет новый QR-код и возвращает его ID.
// Частичный уникальный индекс по (visitor_id, visit_day) для статусов
// active и used закрывает гонку двух одновременных выпусков на одну дату:
// проигравший получает ErrDuplicateQR.
func (s *Storage) CreateQRCode(ctx context.Context, code models.QRCode) (string, error) {
	const op = "storage.CreateQRCode"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO qrcodes (user_uid, visitor_id, visit_details_id, visit_day,
			      qr_data, qr_image_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		code.UserUID, code.VisitorID, code.VisitDetailsID, code.VisitDay,
		code.QRData, code.QRImageURL, code.Status).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", fmt.Errorf("%s: %w", op, models.ErrDuplicateQR)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetQRCodeByData возвращает QR-код по его токену.
func (s *Storage) GetQRCodeByData(ctx context.Context, qrData string) (*models.QRCode, error) {
	const op = "storage.GetQRCodeByData"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, visitor_id, visit_details_id, visit_day, qr_data,
			      qr_image_url, status, created_at, scanned_at
			  FROM qrcodes
			  WHERE qr_data = $1`
	row := s.DB.QueryRowContext(ctx, query, qrData)

	var result models.QRCode
	var scannedAt sql.NullTime
	if err := row.Scan(&result.ID, &result.UserUID, &result.VisitorID, &result.VisitDetailsID,
		&result.VisitDay, &result.QRData, &result.QRImageURL, &result.Status,
		&result.CreatedAt, &scannedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if scannedAt.Valid {
		result.ScannedAt = &scannedAt.Time
	}
	return &result, nil
}

// HasQRForVisitorDay сообщает, есть ли у посетителя действующий либо
// использованный QR-код на указанный день. Предварительная проверка
// перед вставкой: даёт понятную ошибку без обращения к индексу.
func (s *Storage) HasQRForVisitorDay(ctx context.Context, visitorID string, day time.Time) (bool, error) {
	const op = "storage.HasQRForVisitorDay"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM qrcodes
			      WHERE visitor_id = $1 AND visit_day = $2 AND status IN ('active', 'used')
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, visitorID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// MarkQRCodeUsed однократно переводит код из active в used.
// Возвращает количество изменённых строк: ноль означает, что код
// уже перешёл в финальный статус параллельным сканированием или развёрткой.
func (s *Storage) MarkQRCodeUsed(ctx context.Context, id string, scannedAt time.Time) (int, error) {
	const op = "storage.MarkQRCodeUsed"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE qrcodes
			  SET status = 'used', scanned_at = $2
			  WHERE id = $1 AND status = 'active'`
	result, err := s.DB.ExecContext(ctx, query, id, scannedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkQRCodeExpired переводит код из active в expired.
func (s *Storage) MarkQRCodeExpired(ctx context.Context, id string) error {
	const op = "storage.MarkQRCodeExpired"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE qrcodes
			  SET status = 'expired'
			  WHERE id = $1 AND status = 'active'`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExpireQRCodesBefore массово помечает истёкшими активные коды,
// чья дата визита раньше указанного дня. Возвращает количество
// затронутых записей.
func (s *Storage) ExpireQRCodesBefore(ctx context.Context, day time.Time) (int, error) {
	const op = "storage.ExpireQRCodesBefore"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE qrcodes
			  SET status = 'expired'
			  WHERE status = 'active' AND visit_day < $1`
	result, err := s.DB.ExecContext(ctx, query, day)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
