package handler

import (
	"context"

	"library-loans/internal/domain"
	"library-loans/internal/service"
)

// 以下接口由 internal/service 中的实现满足；测试可替换

type CatalogService interface {
	AddBook(ctx context.Context, in domain.NewBook) (int64, error)
	EditBook(ctx context.Context, id int64, title, author string) error
	DeleteBook(ctx context.Context, id int64) error
}

type QueryService interface {
	BookDetails(ctx context.Context, id int64) (domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	Search(ctx context.Context, keyword string) ([]domain.Book, error)
	MyHistory(ctx context.Context, p service.Principal) ([]domain.HistoryEntry, error)
	MyOverdueCount(ctx context.Context, p service.Principal) (int64, error)
	MyLoans(ctx context.Context, p service.Principal) ([]domain.OpenLoan, error)
}

type LedgerService interface {
	Borrow(ctx context.Context, p service.Principal, userID, bookID int64) (int64, error)
	GiveBack(ctx context.Context, p service.Principal, userID, bookID int64) error
	OverdueCount(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	OpenLoans(ctx context.Context, userID int64) ([]domain.OpenLoan, error)
}

type DirectoryService interface {
	service.Authenticator
	RegisterUser(ctx context.Context, in domain.NewUser) (int64, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
}
