package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"library-loans/internal/domain"
)

// Repos 一组绑定到同一连接/事务的仓储
type Repos struct {
	Books domain.BookRepository
	Users domain.UserRepository
	Loans domain.LoanRepository
}

func reposOf(db *gorm.DB) Repos {
	return Repos{
		Books: NewBookRepo(db),
		Users: NewUserRepo(db),
		Loans: NewLoanRepo(db),
	}
}

// Store 持有事务边界；跨表写入都经 Tx
type Store struct {
	db *gorm.DB
	Repos
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, Repos: reposOf(db)}
}

// Tx fn 返回 error 即回滚，返回 nil 才提交；panic 同样回滚
func (s *Store) Tx(ctx context.Context, fn func(r Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposOf(tx))
	})
}

// Ping 快速探测存储是否可用
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// AutoMigrate 建表（books/users/loans），并补齐旧库缺失的检索列
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&domain.Book{}, &domain.User{}, &domain.Loan{}); err != nil {
		return err
	}
	_, err := s.Books.BackfillFold(context.Background())
	return err
}
