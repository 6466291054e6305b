package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"library-loans/internal/domain"
	"library-loans/internal/repo"
)

var loanOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "library_loan_operations_total", Help: "Borrow/return attempts by outcome"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(loanOps) }

// Ledger 借还账本：库存与借阅记录在同一事务里变更
type Ledger struct {
	store *repo.Store
	clock Clock
	log   *zap.Logger
}

func NewLedger(store *repo.Store, clock Clock, l *zap.Logger) *Ledger {
	if clock == nil {
		clock = SystemClock
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Ledger{store: store, clock: clock, log: l}
}

func (s *Ledger) Borrow(ctx context.Context, p Principal, userID, bookID int64) (int64, error) {
	who, err := authorize(p, userID)
	if err != nil {
		s.observe("borrow", err)
		return 0, err
	}
	var loanID int64
	borrowDate := domain.FormatDate(today(s.clock))
	err = s.store.Tx(ctx, func(r repo.Repos) error {
		u, err := r.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
		}
		b, err := r.Books.FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: book %d", domain.ErrNotFound, bookID)
		}
		if b.Quantity <= 0 {
			return fmt.Errorf("%w: %q", domain.ErrNoCopiesAvailable, b.Title)
		}
		open, err := r.Loans.CountOpen(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: user %d book %d", domain.ErrAlreadyBorrowed, userID, bookID)
		}

		ok, err := r.Books.DecrementQuantity(ctx, bookID)
		if err != nil {
			return failStep(err)
		}
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrNoCopiesAvailable, b.Title)
		}
		loan := &domain.Loan{UserID: userID, BookID: bookID, BorrowDate: borrowDate}
		if err := r.Loans.Create(ctx, loan); err != nil {
			return failStep(err)
		}
		loanID = loan.ID
		return nil
	})
	if err != nil {
		err = txErr(err, domain.ErrBorrowFailed)
		s.observe("borrow", err)
		s.log.Warn("borrow rejected",
			zap.Int64("user_id", userID), zap.Int64("book_id", bookID),
			zap.Int64("by", who.UserID), zap.Error(err))
		return 0, err
	}
	s.observe("borrow", nil)
	s.log.Info("book borrowed",
		zap.Int64("loan_id", loanID), zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID), zap.Int64("by", who.UserID))
	return loanID, nil
}

// GiveBack 关闭该 (user, book) 最近一条未还记录并归还库存
func (s *Ledger) GiveBack(ctx context.Context, p Principal, userID, bookID int64) error {
	who, err := authorize(p, userID)
	if err != nil {
		s.observe("return", err)
		return err
	}
	returnDate := domain.FormatDate(today(s.clock))
	var loanID int64
	err = s.store.Tx(ctx, func(r repo.Repos) error {
		// 先锁书再读借阅，和 Borrow 保持同一加锁顺序
		b, err := r.Books.FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		loan, err := r.Loans.LatestOpen(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if loan == nil || b == nil {
			return fmt.Errorf("%w: user %d book %d", domain.ErrNoActiveLoan, userID, bookID)
		}

		ok, err := r.Loans.Close(ctx, loan.ID, returnDate)
		if err != nil {
			return failStep(err)
		}
		if !ok {
			return fmt.Errorf("%w: loan %d already closed", domain.ErrNoActiveLoan, loan.ID)
		}
		ok, err = r.Books.IncrementQuantity(ctx, bookID)
		if err != nil {
			return failStep(err)
		}
		if !ok {
			return failStep(fmt.Errorf("book %d vanished", bookID))
		}
		loanID = loan.ID
		return nil
	})
	if err != nil {
		err = txErr(err, domain.ErrReturnFailed)
		s.observe("return", err)
		s.log.Warn("return rejected",
			zap.Int64("user_id", userID), zap.Int64("book_id", bookID),
			zap.Int64("by", who.UserID), zap.Error(err))
		return err
	}
	s.observe("return", nil)
	s.log.Info("book returned",
		zap.Int64("loan_id", loanID), zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID), zap.Int64("by", who.UserID))
	return nil
}

func (s *Ledger) OverdueCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.Loans.CountOverdue(ctx, userID, domain.OverdueCutoff(today(s.clock)))
	return n, storeErr(err)
}

func (s *Ledger) History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	h, err := s.store.Loans.History(ctx, userID)
	return h, storeErr(err)
}

func (s *Ledger) OpenLoans(ctx context.Context, userID int64) ([]domain.OpenLoan, error) {
	loans, err := s.store.Loans.OpenByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	cutoff := domain.OverdueCutoff(today(s.clock))
	for i := range loans {
		loans[i].DueDate = domain.DueDate(loans[i].BorrowDate)
		loans[i].Overdue = loans[i].BorrowDate < cutoff
	}
	return loans, nil
}

func (s *Ledger) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if k := domain.KindOf(err); k != nil {
			outcome = k.Error()
		}
	}
	loanOps.WithLabelValues(op, outcome).Inc()
}

// txErr 写步骤失败归为 failed；前置条件与读阶段错误原样返回；
// 开启/提交事务失败按连接是否可用区分
func txErr(err, failed error) error {
	var m *mutationErr
	switch {
	case errors.As(err, &m):
		return fmt.Errorf("%w: %v", failed, m.err)
	case domain.KindOf(err) != nil:
		return err
	case repo.IsUnavailable(err):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", failed, err)
	}
}
