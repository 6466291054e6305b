package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"library-loans/internal/domain"
)

func TestIsDupKey(t *testing.T) {
	assert.True(t, IsDupKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDupKey(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsDupKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x'"}))
	assert.True(t, IsDupKey(errors.New("constraint failed: UNIQUE constraint failed: books.isbn (2067)")))

	assert.False(t, IsDupKey(nil))
	assert.False(t, IsDupKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDupKey(errors.New("no such table: books")))
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(driver.ErrBadConn))
	assert.True(t, IsUnavailable(context.DeadlineExceeded))
	assert.True(t, IsUnavailable(errors.New("sql: database is closed")))
	assert.False(t, IsUnavailable(gorm.ErrDuplicatedKey))
	assert.False(t, IsUnavailable(nil))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap(nil))
	assert.ErrorIs(t, wrap(driver.ErrBadConn), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, wrap(driver.ErrBadConn), driver.ErrBadConn)

	other := errors.New("syntax error")
	assert.Equal(t, other, wrap(other))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!% pure", escapeLike("100% pure"))
	assert.Equal(t, "snake!_case", escapeLike("snake_case"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
}
