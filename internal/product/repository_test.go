package product

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"irokart-be/internal/inventory"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	i5ID  = "11111111-1111-1111-1111-111111111111"
	catID = "22222222-2222-2222-2222-222222222222"
)

var (
	productCols = []string{
		"id", "seller_id", "category_id", "name", "slug", "short_description",
		"description", "product_type", "sku", "cost_price", "selling_price", "compare_at_price",
		"tax_rate", "product_status", "is_featured", "is_active", "created_at", "updated_at",
		"name", "slug",
	}
	imageCols     = []string{"id", "product_id", "image_url", "alt_text", "is_primary", "sort_order"}
	inventoryCols = []string{"product_id", "quantity", "reserved_quantity", "low_stock_threshold", "updated_at"}
)

func setupRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Repository) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, mock, NewRepository(database, inventory.NewRepository())
}

func i5Row(rows *sqlmock.Rows, active bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		i5ID, nil, catID, "Intel Core i5", "intel-i5", nil,
		nil, "physical", "SKU-I5", "8000.00", "12999.00", nil,
		"18.00", "active", false, active, now, now,
		"Processors", "processors",
	)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Default filter hides inactive and enriches", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`SELECT .* FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE p.is_active = true ORDER BY p.created_at DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(i5Row(sqlmock.NewRows(productCols), true))
		mock.ExpectQuery(`FROM product_images WHERE product_id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{i5ID})).
			WillReturnRows(sqlmock.NewRows(imageCols).
				AddRow("img-1", i5ID, "https://cdn.example.com/i5-side.jpg", nil, false, 0).
				AddRow("img-2", i5ID, "https://cdn.example.com/i5-box.jpg", "box", true, 1))
		mock.ExpectQuery(`FROM inventory WHERE product_id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{i5ID})).
			WillReturnRows(sqlmock.NewRows(inventoryCols).AddRow(i5ID, 8, 3, 10, time.Now()))

		products, err := repo.List(ctx, ListFilter{Limit: 50})

		require.NoError(t, err)
		require.Len(t, products, 1)
		p := products[0]
		assert.Equal(t, "intel-i5", p.Slug)
		assert.True(t, decimal.RequireFromString("12999").Equal(p.SellingPrice))
		assert.False(t, p.CompareAtPrice.Valid)
		assert.Nil(t, p.SellerID)
		require.NotNil(t, p.Category)
		assert.Equal(t, "processors", p.Category.Slug)
		require.Len(t, p.Images, 2)
		require.NotNil(t, p.PrimaryImageURL)
		assert.Equal(t, "https://cdn.example.com/i5-box.jpg", *p.PrimaryImageURL)
		assert.Equal(t, 8, p.StockQuantity)
		assert.Equal(t, 5, p.AvailableQuantity)
		assert.Equal(t, 10, p.LowStockThreshold)
		assert.Equal(t, inventory.LowStock, p.StockStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("All filters", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`WHERE p.product_status = \$1 AND lower\(c.slug\) = lower\(\$2\) AND p.name ILIKE \$3 ORDER BY p.created_at DESC LIMIT \$4 OFFSET \$5`).
			WithArgs("active", "Processors", "%core%", 20, 40).
			WillReturnRows(sqlmock.NewRows(productCols))

		products, err := repo.List(ctx, ListFilter{
			Status:          "active",
			IncludeInactive: true,
			Category:        "Processors",
			Search:          " core ",
			Limit:           20,
			Offset:          40,
		})

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NotNil(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Category by id", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`WHERE p.is_active = true AND p.category_id = \$1 ORDER BY`).
			WithArgs(catID, 50, 0).
			WillReturnRows(sqlmock.NewRows(productCols))

		_, err := repo.List(ctx, ListFilter{Category: catID, Limit: 50})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query error", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`SELECT .* FROM products`).WillReturnError(sql.ErrConnDone)

		_, err := repo.List(ctx, ListFilter{Limit: 50})
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestRepository_GetOne(t *testing.T) {
	ctx := context.Background()

	t.Run("By id includes soft deleted", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE p.id = \$1`).
			WithArgs(i5ID).
			WillReturnRows(i5Row(sqlmock.NewRows(productCols), false))
		mock.ExpectQuery(`FROM product_images`).WillReturnRows(sqlmock.NewRows(imageCols))
		mock.ExpectQuery(`FROM inventory`).WillReturnRows(sqlmock.NewRows(inventoryCols))

		p, err := repo.GetByID(ctx, i5ID)

		require.NoError(t, err)
		assert.False(t, p.IsActive)
		assert.Nil(t, p.PrimaryImageURL)
		assert.NotNil(t, p.Images)
		assert.Equal(t, 0, p.StockQuantity)
		assert.Equal(t, inventory.DefaultLowStockThreshold, p.LowStockThreshold)
		assert.Equal(t, inventory.OutOfStock, p.StockStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("By slug is case insensitive", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`WHERE lower\(p.slug\) = lower\(\$1\)`).
			WithArgs("Intel-I5").
			WillReturnRows(i5Row(sqlmock.NewRows(productCols), true))
		mock.ExpectQuery(`FROM product_images`).WillReturnRows(sqlmock.NewRows(imageCols))
		mock.ExpectQuery(`FROM inventory`).WillReturnRows(sqlmock.NewRows(inventoryCols))

		p, err := repo.GetBySlug(ctx, "Intel-I5")
		require.NoError(t, err)
		assert.Equal(t, i5ID, p.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`WHERE lower\(p.slug\) = lower\(\$1\)`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(productCols))

		_, err := repo.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty input skips the query", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		out, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Keyed by id", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`WHERE p.id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{i5ID, catID})).
			WillReturnRows(i5Row(sqlmock.NewRows(productCols), true))
		mock.ExpectQuery(`FROM product_images`).WillReturnRows(sqlmock.NewRows(imageCols))
		mock.ExpectQuery(`FROM inventory`).
			WillReturnRows(sqlmock.NewRows(inventoryCols).AddRow(i5ID, 30, 0, 5, time.Now()))

		out, err := repo.GetByIDs(ctx, []string{i5ID, catID})

		require.NoError(t, err)
		require.Contains(t, out, i5ID)
		assert.Equal(t, 30, out[i5ID].AvailableQuantity)
		assert.Equal(t, inventory.InStock, out[i5ID].StockStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	newProduct := func(pt Type) *Product {
		return &Product{
			CategoryID:   &[]string{catID}[0],
			Name:         "Intel Core i5",
			Slug:         "intel-core-i5",
			ProductType:  pt,
			CostPrice:    decimal.Zero,
			SellingPrice: decimal.NewFromInt(12999),
			TaxRate:      DefaultTaxRate,
			Status:       StatusDraft,
			IsActive:     true,
		}
	}

	t.Run("Physical with image and stock", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO products .* RETURNING id, created_at, updated_at`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(i5ID, now, now))
		mock.ExpectExec(`INSERT INTO product_images`).
			WithArgs(i5ID, "https://cdn.example.com/i5.jpg", "Intel Core i5").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO inventory`).
			WithArgs(i5ID, 25, 10).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
		mock.ExpectCommit()

		p := newProduct(TypePhysical)
		err := repo.Create(ctx, p, "https://cdn.example.com/i5.jpg", 25, 10)

		require.NoError(t, err)
		assert.Equal(t, i5ID, p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Digital has no inventory row", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO products`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(i5ID, now, now))
		mock.ExpectCommit()

		err := repo.Create(ctx, newProduct(TypeDigital), "", 0, 10)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate slug rolls back", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO products`).WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.Create(ctx, newProduct(TypePhysical), "", 0, 10)

		assert.ErrorIs(t, err, ErrSlugTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Sorted columns", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectExec(`UPDATE products SET name = \$1, selling_price = \$2, updated_at = NOW\(\) WHERE id = \$3`).
			WithArgs("Intel Core i5 14400", decimal.NewFromInt(13499), i5ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, i5ID, map[string]any{
			"selling_price": decimal.NewFromInt(13499),
			"name":          "Intel Core i5 14400",
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing product", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectExec(`UPDATE products SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, i5ID, map[string]any{"is_featured": true})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Slug conflict", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectExec(`UPDATE products SET`).WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Update(ctx, i5ID, map[string]any{"slug": "intel-i7"})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("Empty", func(t *testing.T) {
		_, _, repo := setupRepo(t)
		assert.ErrorIs(t, repo.Update(ctx, i5ID, nil), ErrEmptyPatch)
	})
}

func TestRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	_, mock, repo := setupRepo(t)

	mock.ExpectExec(`UPDATE products SET is_active = false`).
		WithArgs(i5ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET is_active = false`).
		WithArgs(catID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.SoftDelete(ctx, i5ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, catID), ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown product", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(i5ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.SetInventory(ctx, i5ID, 5, nil)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Upserts level", func(t *testing.T) {
		_, mock, repo := setupRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(i5ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(`INSERT INTO inventory .* ON CONFLICT`).
			WithArgs(i5ID, 40, nil).
			WillReturnRows(sqlmock.NewRows(inventoryCols).AddRow(i5ID, 40, 2, 10, time.Now()))

		level, err := repo.SetInventory(ctx, i5ID, 40, nil)

		require.NoError(t, err)
		assert.Equal(t, 38, level.Available())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
