package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"library-loans/internal/domain"
)

type LoanRepo struct{ db *gorm.DB }

func NewLoanRepo(db *gorm.DB) *LoanRepo { return &LoanRepo{db: db} }

func (r *LoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	return wrap(r.db.WithContext(ctx).Create(l).Error)
}

func (r *LoanRepo) openScope(ctx context.Context, userID, bookID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID)
}

func (r *LoanRepo) LatestOpen(ctx context.Context, userID, bookID int64) (*domain.Loan, error) {
	var l domain.Loan
	err := r.openScope(ctx, userID, bookID).
		Order("borrow_date DESC").Order("id DESC").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &l, nil
}

func (r *LoanRepo) CountOpen(ctx context.Context, userID, bookID int64) (int64, error) {
	var n int64
	if err := r.openScope(ctx, userID, bookID).Count(&n).Error; err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

func (r *LoanRepo) CountOpenByBook(ctx context.Context, bookID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&n).Error
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// Close 只关闭仍处于 OPEN 的记录
func (r *LoanRepo) Close(ctx context.Context, id int64, returnDate string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("id = ? AND return_date IS NULL", id).
		Update("return_date", returnDate)
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *LoanRepo) CountOverdue(ctx context.Context, userID int64, cutoff string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("user_id = ? AND return_date IS NULL AND borrow_date < ?", userID, cutoff).
		Count(&n).Error
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// History 已删除的书标题为空
func (r *LoanRepo) History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	rows := []domain.HistoryEntry{}
	err := r.db.WithContext(ctx).
		Table("loans AS l").
		Select("COALESCE(b.title, '') AS title, l.borrow_date AS borrow_date, l.return_date AS return_date").
		Joins("LEFT JOIN books AS b ON b.id = l.book_id").
		Where("l.user_id = ?", userID).
		Order("l.borrow_date ASC").Order("l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

func (r *LoanRepo) OpenByUser(ctx context.Context, userID int64) ([]domain.OpenLoan, error) {
	rows := []domain.OpenLoan{}
	err := r.db.WithContext(ctx).
		Table("loans AS l").
		Select("l.id AS loan_id, l.book_id AS book_id, COALESCE(b.title, '') AS title, l.borrow_date AS borrow_date").
		Joins("LEFT JOIN books AS b ON b.id = l.book_id").
		Where("l.user_id = ? AND l.return_date IS NULL", userID).
		Order("l.borrow_date ASC").Order("l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}
