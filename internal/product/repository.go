package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"irokart-be/internal/db"
	"irokart-be/internal/inventory"
	"irokart-be/internal/logger"
	"irokart-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	Create(ctx context.Context, p *Product, imageURL string, stock, threshold int) error
	Update(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	SetInventory(ctx context.Context, id string, quantity int, threshold *int) (*inventory.Level, error)
}

type repository struct {
	db  *sql.DB
	inv inventory.Repository
}

func NewRepository(db *sql.DB, inv inventory.Repository) Repository {
	return &repository{db: db, inv: inv}
}

const productColumns = `p.id, p.seller_id, p.category_id, p.name, p.slug, p.short_description,
	p.description, p.product_type, p.sku, p.cost_price, p.selling_price, p.compare_at_price,
	p.tax_rate, p.product_status, p.is_featured, p.is_active, p.created_at, p.updated_at,
	c.name, c.slug`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var (
		p            Product
		catName      sql.NullString
		catSlug      sql.NullString
		productType  string
		productState string
	)
	if err := row.Scan(
		&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Slug, &p.ShortDescription,
		&p.Description, &productType, &p.SKU, &p.CostPrice, &p.SellingPrice, &p.CompareAtPrice,
		&p.TaxRate, &productState, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&catName, &catSlug,
	); err != nil {
		return nil, err
	}
	p.ProductType = Type(productType)
	p.Status = Status(productState)
	if catName.Valid {
		p.Category = &CategoryRef{Name: catName.String, Slug: catSlug.String}
	}
	p.Images = []Image{}
	return &p, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, "p.is_active = true")
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("p.product_status = $%d", len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		if utils.IsUUID(c) {
			where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
		} else {
			where = append(where, fmt.Sprintf("lower(c.slug) = lower($%d)", len(args)))
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}

	query := "SELECT " + productColumns + productFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attach(ctx, products); err != nil {
		log.Error("attach failed", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "lower(p.slug) = lower($1)", slug)
}

func (r *repository) getOne(ctx context.Context, cond string, arg string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+productFrom+" WHERE "+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get product failed", zap.String("key", arg), zap.Error(err))
		return nil, err
	}
	if err := r.attach(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIDs loads products regardless of their active flag; callers decide
// what an inactive product means for them.
func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	out := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+productFrom+" WHERE p.id = ANY($1)", pq.Array(ids))
	if err != nil {
		logger.FromCtx(ctx).Error("get products by ids failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var list []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return out, nil
}

// attach loads images and inventory for a page of products with one query
// each, then fills in the derived fields.
func (r *repository) attach(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, image_url, alt_text, is_primary, sort_order
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY sort_order ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.AltText, &img.IsPrimary, &img.SortOrder); err != nil {
			return err
		}
		if p, ok := byID[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	levels, err := r.inv.Levels(ctx, r.db, ids)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	for _, p := range products {
		p.Inventory = levels[p.ID]
		p.Enrich()
	}
	return nil
}

// Create inserts the product, its primary image and, for physical goods, the
// inventory row in one transaction.
func (r *repository) Create(ctx context.Context, p *Product, imageURL string, stock, threshold int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products (
				seller_id, category_id, name, slug, short_description, description,
				product_type, sku, cost_price, selling_price, compare_at_price, tax_rate,
				product_status, is_featured, is_active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, created_at, updated_at
		`,
			p.SellerID, p.CategoryID, p.Name, p.Slug, p.ShortDescription, p.Description,
			string(p.ProductType), p.SKU, p.CostPrice, p.SellingPrice, p.CompareAtPrice, p.TaxRate,
			string(p.Status), p.IsFeatured, p.IsActive,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return mapUniqueViolation(err)
		}

		if imageURL != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_images (product_id, image_url, alt_text, is_primary, sort_order)
				VALUES ($1, $2, $3, true, 0)
			`, p.ID, imageURL, p.Name); err != nil {
				return fmt.Errorf("insert product image: %w", err)
			}
		}

		if p.TracksStock() {
			level := &inventory.Level{ProductID: p.ID, Quantity: stock, LowStockThreshold: threshold}
			if err := r.inv.Create(ctx, tx, level); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("create product failed", zap.Error(err))
		return err
	}

	log.Info("product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	return nil
}

// Update applies a column->value map. Keys must already be whitelisted by the
// caller; they are sorted so the statement text is stable.
func (r *repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrEmptyPatch
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, fields[col])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("update product failed", zap.String("product_id", id), zap.Error(err))
		return mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SetInventory(ctx context.Context, id string, quantity int, threshold *int) (*inventory.Level, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return r.inv.Set(ctx, r.db, id, quantity, threshold)
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}
