package category

import (
	"context"
	"database/sql"
	"errors"

	"irokart-be/internal/apperr"
	"irokart-be/internal/logger"

	"go.uber.org/zap"
)

var ErrCategoryNotFound = apperr.NotFoundf("category not found")

type Repository interface {
	ListActive(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, parent_id, name, slug, description, image_url, sort_order, is_active, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	var c Category
	if err := row.Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Description,
		&c.ImageURL, &c.SortOrder, &c.IsActive, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListActive(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListActive"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_active = true
		ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Info("categories fetched", zap.Int("count", len(categories)))
	return categories, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE lower(slug) = lower($1)", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	return c, err
}
