package service

import (
	"context"

	"library-loans/internal/domain"
)

// Query 面向当前登录用户的只读视图
type Query struct {
	catalog *Catalog
	ledger  *Ledger
}

func NewQuery(c *Catalog, l *Ledger) *Query { return &Query{catalog: c, ledger: l} }

func (q *Query) BookDetails(ctx context.Context, id int64) (domain.Book, error) {
	return q.catalog.GetBook(ctx, id)
}

func (q *Query) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return q.catalog.ListBooks(ctx)
}

func (q *Query) Search(ctx context.Context, keyword string) ([]domain.Book, error) {
	return q.catalog.SearchBooks(ctx, keyword)
}

func (q *Query) MyHistory(ctx context.Context, p Principal) ([]domain.HistoryEntry, error) {
	id, err := whoami(p)
	if err != nil {
		return nil, err
	}
	return q.ledger.History(ctx, id.UserID)
}

func (q *Query) MyOverdueCount(ctx context.Context, p Principal) (int64, error) {
	id, err := whoami(p)
	if err != nil {
		return 0, err
	}
	return q.ledger.OverdueCount(ctx, id.UserID)
}

func (q *Query) MyLoans(ctx context.Context, p Principal) ([]domain.OpenLoan, error) {
	id, err := whoami(p)
	if err != nil {
		return nil, err
	}
	return q.ledger.OpenLoans(ctx, id.UserID)
}

func whoami(p Principal) (domain.Identity, error) {
	if p == nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	id, ok := p.Identity()
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}
