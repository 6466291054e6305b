package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"library-loans/internal/domain"
	"library-loans/internal/repo"
)

// 最早可登记的出版年份
const minPlausibleYear = 1000

type Catalog struct {
	store *repo.Store
	clock Clock
	log   *zap.Logger
}

func NewCatalog(store *repo.Store, clock Clock, l *zap.Logger) *Catalog {
	if clock == nil {
		clock = SystemClock
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Catalog{store: store, clock: clock, log: l}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// tooLong 按去空白后的字符数比较，与入库值一致
func tooLong(s string, limit int) bool { return utf8.RuneCountInString(strings.TrimSpace(s)) > limit }

func checkTitleAuthor(title, author string) error {
	switch {
	case blank(title), blank(author):
		return fmt.Errorf("%w: title and author are required", domain.ErrInvalidInput)
	case tooLong(title, domain.MaxTitleLen):
		return fmt.Errorf("%w: title longer than %d", domain.ErrInvalidInput, domain.MaxTitleLen)
	case tooLong(author, domain.MaxAuthorLen):
		return fmt.Errorf("%w: author longer than %d", domain.ErrInvalidInput, domain.MaxAuthorLen)
	}
	return nil
}

func (s *Catalog) validate(in domain.NewBook) error {
	if err := checkTitleAuthor(in.Title, in.Author); err != nil {
		return err
	}
	switch {
	case blank(in.ISBN):
		return fmt.Errorf("%w: isbn is required", domain.ErrInvalidInput)
	case tooLong(in.ISBN, domain.MaxISBNLen):
		return fmt.Errorf("%w: isbn longer than %d", domain.ErrInvalidInput, domain.MaxISBNLen)
	case in.Quantity < 0:
		return fmt.Errorf("%w: quantity must be >= 0", domain.ErrInvalidInput)
	case in.Year < minPlausibleYear || in.Year > today(s.clock).Year()+1:
		return fmt.Errorf("%w: implausible year %d", domain.ErrInvalidInput, in.Year)
	}
	return nil
}

func (s *Catalog) AddBook(ctx context.Context, in domain.NewBook) (int64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}
	b := &domain.Book{
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
		ISBN:     strings.TrimSpace(in.ISBN),
		Year:     in.Year,
		Quantity: in.Quantity,
	}
	if err := s.store.Books.Create(ctx, b); err != nil {
		if repo.IsDupKey(err) {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateIsbn, b.ISBN)
		}
		return 0, storeErr(err)
	}
	s.log.Info("book added", zap.Int64("book_id", b.ID), zap.String("isbn", b.ISBN), zap.Int("quantity", b.Quantity))
	return b.ID, nil
}

func (s *Catalog) EditBook(ctx context.Context, id int64, title, author string) error {
	if err := checkTitleAuthor(title, author); err != nil {
		return err
	}
	ok, err := s.store.Books.UpdateTitleAuthor(ctx, id, strings.TrimSpace(title), strings.TrimSpace(author))
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return fmt.Errorf("%w: book %d", domain.ErrNotFound, id)
	}
	return nil
}

// DeleteBook 存在未还借阅时拒绝删除
func (s *Catalog) DeleteBook(ctx context.Context, id int64) error {
	err := s.store.Tx(ctx, func(r repo.Repos) error {
		b, err := r.Books.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: book %d", domain.ErrNotFound, id)
		}
		open, err := r.Loans.CountOpenByBook(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: %d open", domain.ErrHasActiveLoans, open)
		}
		if _, err := r.Books.Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	s.log.Info("book deleted", zap.Int64("book_id", id))
	return nil
}

func (s *Catalog) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	b, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return domain.Book{}, storeErr(err)
	}
	if b == nil {
		return domain.Book{}, fmt.Errorf("%w: book %d", domain.ErrNotFound, id)
	}
	return *b, nil
}

func (s *Catalog) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.store.Books.List(ctx)
	return books, storeErr(err)
}

func (s *Catalog) SearchBooks(ctx context.Context, keyword string) ([]domain.Book, error) {
	if blank(keyword) {
		return nil, fmt.Errorf("%w: empty keyword", domain.ErrInvalidInput)
	}
	books, err := s.store.Books.Search(ctx, strings.TrimSpace(keyword))
	return books, storeErr(err)
}
