package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"os/exec"
	"testing"

	"irokart-be/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{DBURL: "postgres://app@localhost/irokart"}
	assert.Equal(t, "postgres://app@localhost/irokart", buildDSN(cfg))

	cfg.DBServiceURL = "postgres://service@localhost/irokart"
	assert.Equal(t, "postgres://service@localhost/irokart", buildDSN(cfg))
}

func TestNewDatabase_ConnectionFailure(t *testing.T) {
	cfg := &config.Config{DBURL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"}

	database, err := NewDatabase(cfg)

	assert.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), "failed to ping DB")
}

func TestNewDatabase_InvalidDriver(t *testing.T) {
	database, err := newDatabaseWithDriver(&config.Config{}, "invalid_driver_name")

	assert.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

func TestInitDB_Failure(t *testing.T) {
	if os.Getenv("BE_CRASHER") == "1" {
		InitDB(&config.Config{DBURL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestInitDB_Failure")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1")
	err := cmd.Run()

	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}

type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{}, nil
}

type mockConn struct{}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return &mockStmt{}, nil }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, nil }

type mockStmt struct{}

func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
}

func TestNewDatabase_Success(t *testing.T) {
	database, err := newDatabaseWithDriver(&config.Config{DBURL: "mock"}, "mock_driver_success")
	assert.NoError(t, err)
	assert.NotNil(t, database)
}

func TestWithTx(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE inventory").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := WithTx(context.Background(), database, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(context.Background(), "UPDATE inventory SET quantity = 1")
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := WithTx(context.Background(), database, func(tx *sql.Tx) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
