package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library-loans/internal/core/database"
	"library-loans/internal/domain"
	"library-loans/internal/repo"
)

// 2024-06-01 UTC
var fixedNow = time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock { return ClockFunc(func() time.Time { return t }) }

func daysAgo(n int) Clock { return fixedClock(fixedNow.AddDate(0, 0, -n)) }

func setupStore(t *testing.T) (*repo.Store, *gorm.DB) {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "library.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := repo.NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store, db
}

func seedBook(t *testing.T, store *repo.Store, title string, qty int) int64 {
	t.Helper()
	b := &domain.Book{Title: title, Author: "Frank Herbert", ISBN: "isbn-" + title, Year: 1965, Quantity: qty}
	require.NoError(t, store.Books.Create(context.Background(), b))
	return b.ID
}

func seedUser(t *testing.T, store *repo.Store, username string, role domain.Role) domain.Identity {
	t.Helper()
	u := &domain.User{Name: username, Role: role, Username: username, Credential: "x"}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return domain.Identity{UserID: u.ID, Role: role}
}

func quantityOf(t *testing.T, store *repo.Store, bookID int64) int {
	t.Helper()
	b, err := store.Books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.Quantity
}

// openLoans 按书统计未还记录
func openLoans(t *testing.T, store *repo.Store, bookID int64) int64 {
	t.Helper()
	n, err := store.Loans.CountOpenByBook(context.Background(), bookID)
	require.NoError(t, err)
	return n
}
