package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/optional"
)

func TestBuildScalarUpdateUnpublishClearsMarketing(t *testing.T) {
	input := &dto.UpdateProductInput{IsPublished: optional.Set(false)}

	query, args := buildScalarUpdate("p1", input, time.Now())

	assert.Contains(t, query, "is_published = :is_published")
	assert.Contains(t, query, "is_marketed = false")
	assert.Contains(t, query, "marketed_at = NULL")
	assert.Equal(t, false, args["is_published"])
}

func TestBuildScalarUpdatePublishLeavesMarketing(t *testing.T) {
	input := &dto.UpdateProductInput{IsPublished: optional.Set(true)}

	query, _ := buildScalarUpdate("p1", input, time.Now())

	assert.Contains(t, query, "is_published = :is_published")
	assert.NotContains(t, query, "is_marketed")
}

func TestBuildScalarUpdateAbsentFieldsUntouched(t *testing.T) {
	query, args := buildScalarUpdate("p1", &dto.UpdateProductInput{}, time.Now())

	assert.Equal(t, "UPDATE products SET updated_at = :updated_at WHERE id = :id", query)
	assert.Equal(t, "p1", args["id"])
}

// A driver whose transactions always refuse to commit, for exercising the
// commit error path without a database.
type failCommitDriver struct{}

func (failCommitDriver) Open(string) (driver.Conn, error) { return &failCommitConn{}, nil }

type failCommitConn struct{}

func (*failCommitConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (*failCommitConn) Close() error              { return nil }
func (*failCommitConn) Begin() (driver.Tx, error) { return failCommitTx{}, nil }
func (*failCommitConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}

type failCommitTx struct{}

func (failCommitTx) Commit() error   { return errors.New("commit refused") }
func (failCommitTx) Rollback() error { return nil }

func init() {
	sql.Register("failcommit", failCommitDriver{})
}

func TestUpdateStockWrapsCommitFailure(t *testing.T) {
	db, err := sql.Open("failcommit", "")
	require.NoError(t, err)
	r := NewPGRepository(sqlx.NewDb(db, "pgx"))

	err = r.UpdateStock(context.Background(), []dto.StockUpdate{
		{ProductID: "3f1d3f54-9f5a-4d8a-9a51-02c6f2f6f001", Stock: 5},
	})

	require.Error(t, err)
	var txErr *apperrors.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "stock update", txErr.Op)
}
