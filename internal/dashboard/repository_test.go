package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders$`).WillReturnRows(count(10))
	n, err := repo.CountOrders(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE created_at >= \$1`).WithArgs(since).WillReturnRows(count(2))
	n, err = repo.CountOrders(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mock.ExpectQuery(`WHERE order_status = \$1`).WithArgs("pending").WillReturnRows(count(1))
	_, err = repo.CountOrdersByStatus(ctx, "pending")
	require.NoError(t, err)

	mock.ExpectQuery(`FROM profiles`).WillReturnRows(count(5))
	_, err = repo.CountProfiles(ctx)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM products WHERE is_active = true`).WillReturnRows(count(5))
	_, err = repo.CountActiveProducts(ctx)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM inventory WHERE quantity <= low_stock_threshold`).WillReturnRows(count(1))
	_, err = repo.CountLowStock(ctx)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM profiles`).WillReturnError(errors.New("timeout"))
	_, err = repo.CountProfiles(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CapturedRevenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	monthStart := time.Date(2026, 2, 28, 18, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) FROM orders WHERE payment_status = 'captured'$`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("2598.00"))
	total, err := repo.CapturedRevenue(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2598", total.String())

	mock.ExpectQuery(`WHERE payment_status = 'captured' AND created_at >= \$1`).
		WithArgs(monthStart).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("0"))
	month, err := repo.CapturedRevenue(ctx, monthStart)
	require.NoError(t, err)
	assert.True(t, month.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RecentOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM orders o LEFT JOIN profiles pr ON pr.id = o.profile_id ORDER BY o.created_at DESC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_number", "order_status", "payment_status", "total_amount", "created_at",
			"pr_id", "full_name", "email",
		}).
			AddRow("order-2", "IRO-2", "confirmed", "captured", "1299.00", now, "profile-1", "Asha", "asha@example.com").
			AddRow("order-1", "IRO-1", "pending", "pending", "99.00", now, nil, nil, nil))

	orders, err := repo.RecentOrders(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.NotNil(t, orders[0].Profile)
	assert.Equal(t, "Asha", *orders[0].Profile.FullName)
	assert.Nil(t, orders[1].Profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}
