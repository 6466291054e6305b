package domain

import "errors"

// 核心错误类型：每个操作只返回成功值或以下某一种（可被 %w 包裹，用 errors.Is 判断）
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIsbn     = errors.New("duplicate isbn")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrAlreadyBorrowed   = errors.New("already borrowed")
	ErrNoActiveLoan      = errors.New("no active loan")
	ErrBorrowFailed      = errors.New("borrow failed")
	ErrReturnFailed      = errors.New("return failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrHasActiveLoans    = errors.New("book has active loans")
)

var kinds = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrDuplicateIsbn,
	ErrDuplicateUsername,
	ErrAuthFailed,
	ErrUnauthorized,
	ErrNoCopiesAvailable,
	ErrAlreadyBorrowed,
	ErrNoActiveLoan,
	ErrBorrowFailed,
	ErrReturnFailed,
	ErrStoreUnavailable,
	ErrHasActiveLoans,
}

// KindOf 返回 err 链上第一个匹配的核心错误；非核心错误返回 nil
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
