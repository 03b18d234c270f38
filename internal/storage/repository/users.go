package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/visitgate/visitgate/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, subscription_active,
			      subscription_expiry, is_on_trial, trial_started_at, trial_ends_at, plan_type)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.SubscriptionActive,
		user.SubscriptionExpiry, user.IsOnTrial, user.TrialStartedAt, user.TrialEndsAt,
		user.PlanType).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, subscription_active,
			      subscription_expiry, is_on_trial, trial_started_at, trial_ends_at, plan_type
			  FROM users
			  WHERE username = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, subscription_active,
			      subscription_expiry, is_on_trial, trial_started_at, trial_ends_at, plan_type
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var subscriptionExpiry, trialStartedAt, trialEndsAt sql.NullTime
	var planType sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.SubscriptionActive, &subscriptionExpiry, &u.IsOnTrial,
		&trialStartedAt, &trialEndsAt, &planType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subscriptionExpiry.Valid {
		u.SubscriptionExpiry = &subscriptionExpiry.Time
	}
	if trialStartedAt.Valid {
		u.TrialStartedAt = &trialStartedAt.Time
	}
	if trialEndsAt.Valid {
		u.TrialEndsAt = &trialEndsAt.Time
	}
	if planType.Valid {
		u.PlanType = planType.String
	}
	return u, nil
}

// ListAdminEmails возвращает адреса и имена всех администраторов
// для рассылки уведомлений.
func (s *Storage) ListAdminEmails(ctx context.Context) ([]*models.Notice, error) {
	const op = "storage.ListAdminEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, username FROM users WHERE role = $1`
	rows, err := s.DB.QueryContext(ctx, query, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notice
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.Email, &n.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireLapsedSubscriptions снимает флаг подписки у пользователей,
// чья оплаченная подписка истекла, и возвращает затронутых пользователей.
func (s *Storage) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]*models.Notice, error) {
	const op = "storage.ExpireLapsedSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_active = false
			  WHERE subscription_active = true AND subscription_expiry < $1
			  RETURNING email, username`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notice
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.Email, &n.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireLapsedTrials снимает флаг пробного периода у пользователей,
// чей пробный период истёк, и возвращает затронутых пользователей.
func (s *Storage) ExpireLapsedTrials(ctx context.Context, now time.Time) ([]*models.Notice, error) {
	const op = "storage.ExpireLapsedTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_on_trial = false
			  WHERE is_on_trial = true AND trial_ends_at < $1
			  RETURNING email, username`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notice
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.Email, &n.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
