package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"irokart-be/internal/db"
	"irokart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository interface {
	CreateWithProfile(ctx context.Context, cred *Credential, p *Profile) error
	FindCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpsertProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	RecordLogin(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, f ListFilter) ([]*Profile, error)
	UpdateAccountStatus(ctx context.Context, id string, status AccountStatus) (*Profile, error)
	UpdateUserType(ctx context.Context, id string, t UserType) (*Profile, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const profileColumns = `
	id, full_name, display_name, email, phone, avatar_url,
	user_type, account_status, is_seller, is_email_verified, is_phone_verified,
	last_login_at, login_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.FullName, &p.DisplayName, &p.Email, &p.Phone, &p.AvatarURL,
		&p.UserType, &p.AccountStatus, &p.IsSeller, &p.IsEmailVerified, &p.IsPhoneVerified,
		&p.LastLoginAt, &p.LoginCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWithProfile inserts the credential and its profile in one transaction.
// An existing profile row with the same id is overwritten.
func (r *repository) CreateWithProfile(ctx context.Context, cred *Credential, p *Profile) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateWithProfile"),
		zap.String("email", cred.Email),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, cred.Email, cred.PasswordHash).Scan(&cred.ID, &cred.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				return ErrEmailExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		p.ID = cred.ID
		return upsertProfile(ctx, tx, p)
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Info("email already registered")
		} else {
			log.Error("failed to create user", zap.Error(err))
		}
		return err
	}

	log.Info("user created", zap.String("user_id", cred.ID))
	return nil
}

func upsertProfile(ctx context.Context, q db.Queryer, p *Profile) error {
	row := q.QueryRowContext(ctx, `
		INSERT INTO profiles (id, full_name, email, user_type, account_status, is_email_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			user_type = EXCLUDED.user_type,
			account_status = EXCLUDED.account_status,
			is_email_verified = EXCLUDED.is_email_verified,
			updated_at = NOW()
		RETURNING `+profileColumns,
		p.ID, p.FullName, p.Email, p.UserType, p.AccountStatus, p.IsEmailVerified,
	)
	saved, err := scanProfile(row)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	*p = *saved
	return nil
}

// UpsertProfile writes p over any existing profile with the same id.
func (r *repository) UpsertProfile(ctx context.Context, p *Profile) error {
	if err := upsertProfile(ctx, r.db, p); err != nil {
		logger.FromCtx(ctx).Error("db: failed to upsert profile", zap.String("user_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) FindCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	var c Credential
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)",
		email,
	).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to find user by email", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = $2 WHERE id = $1", id, passwordHash)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update password", zap.String("user_id", id), zap.Error(err))
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProfile"),
		zap.String("user_id", id),
	)

	p, err := scanProfile(r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("profile not found")
			return nil, ErrProfileNotFound
		}
		log.Error("failed to scan profile", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) RecordLogin(ctx context.Context, id string) (*Profile, error) {
	return r.updateProfile(ctx, "RecordLogin", `
		UPDATE profiles
		SET last_login_at = NOW(), login_count = login_count + 1
		WHERE id = $1
		RETURNING `+profileColumns, id)
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	var (
		where []string
		args  []any
	)
	if f.Type != "" && f.Type != "all" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("user_type = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + profileColumns + " FROM profiles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	profiles := []*Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *repository) UpdateAccountStatus(ctx context.Context, id string, status AccountStatus) (*Profile, error) {
	return r.updateProfile(ctx, "UpdateAccountStatus", `
		UPDATE profiles SET account_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns, id, status)
}

func (r *repository) UpdateUserType(ctx context.Context, id string, t UserType) (*Profile, error) {
	return r.updateProfile(ctx, "UpdateUserType", `
		UPDATE profiles SET user_type = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns, id, t)
}

func (r *repository) updateProfile(ctx context.Context, method, query string, args ...any) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		log.Error("update failed", zap.Error(err))
		return nil, err
	}
	return p, nil
}
