package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-loans/internal/domain"
	"library-loans/internal/service"
	mdw "library-loans/internal/transport/http/middleware"
)

type LoanHandler struct {
	Ledger LedgerService
	Query  QueryService
}

type loanOut struct {
	LoanID int64 `json:"loanId"`
}

type countOut struct {
	Count int64 `json:"count"`
}

// historyRow 未还的记录 returnDate 显示为 "not returned"
type historyRow struct {
	Title      string `json:"title"`
	BorrowDate string `json:"borrowDate"`
	ReturnDate string `json:"returnDate"`
}

func historyRows(h []domain.HistoryEntry) []historyRow {
	out := make([]historyRow, 0, len(h))
	for _, e := range h {
		out = append(out, historyRow{Title: e.Title, BorrowDate: e.BorrowDate, ReturnDate: e.ReturnDateText()})
	}
	return out
}

// MountAPI 借还都以当前登录用户为借阅人
func (h *LoanHandler) MountAPI(e EZ) {
	Register(e, Action[struct{}, loanOut]{
		Method: http.MethodPost,
		Path:   "/books/:id/borrow",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (loanOut, error) {
			s, uid, bookID, err := selfAndBook(c)
			if err != nil {
				return loanOut{}, err
			}
			id, err := h.Ledger.Borrow(c.Request.Context(), s, uid, bookID)
			return loanOut{LoanID: id}, err
		},
	})

	Register(e, Action[struct{}, struct{}]{
		Method: http.MethodPost,
		Path:   "/books/:id/return",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			s, uid, bookID, err := selfAndBook(c)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Ledger.GiveBack(c.Request.Context(), s, uid, bookID)
		},
	})

	Register(e, Action[struct{}, []domain.OpenLoan]{
		Method: http.MethodGet,
		Path:   "/me/loans",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.OpenLoan, error) {
			return h.Query.MyLoans(c.Request.Context(), mdw.SessionFrom(c))
		},
	})

	Register(e, Action[struct{}, []historyRow]{
		Method: http.MethodGet,
		Path:   "/me/history",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]historyRow, error) {
			hist, err := h.Query.MyHistory(c.Request.Context(), mdw.SessionFrom(c))
			return historyRows(hist), err
		},
	})

	Register(e, Action[struct{}, countOut]{
		Method: http.MethodGet,
		Path:   "/me/overdue",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (countOut, error) {
			n, err := h.Query.MyOverdueCount(c.Request.Context(), mdw.SessionFrom(c))
			return countOut{Count: n}, err
		},
	})
}

// MountAdmin 借阅台：管理员代会员借还、查记录
func (h *LoanHandler) MountAdmin(e EZ) {
	Register(e, Action[struct{}, loanOut]{
		Method: http.MethodPost,
		Path:   "/users/:id/books/:bookId/borrow",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (loanOut, error) {
			uid, bookID, err := userAndBook(c)
			if err != nil {
				return loanOut{}, err
			}
			id, err := h.Ledger.Borrow(c.Request.Context(), mdw.SessionFrom(c), uid, bookID)
			return loanOut{LoanID: id}, err
		},
	})

	Register(e, Action[struct{}, struct{}]{
		Method: http.MethodPost,
		Path:   "/users/:id/books/:bookId/return",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			uid, bookID, err := userAndBook(c)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Ledger.GiveBack(c.Request.Context(), mdw.SessionFrom(c), uid, bookID)
		},
	})

	Register(e, Action[struct{}, []historyRow]{
		Method: http.MethodGet,
		Path:   "/users/:id/history",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]historyRow, error) {
			uid, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			hist, err := h.Ledger.History(c.Request.Context(), uid)
			return historyRows(hist), err
		},
	})

	Register(e, Action[struct{}, countOut]{
		Method: http.MethodGet,
		Path:   "/users/:id/overdue",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (countOut, error) {
			uid, err := pathID(c, "id")
			if err != nil {
				return countOut{}, err
			}
			n, err := h.Ledger.OverdueCount(c.Request.Context(), uid)
			return countOut{Count: n}, err
		},
	})

	Register(e, Action[struct{}, []domain.OpenLoan]{
		Method: http.MethodGet,
		Path:   "/users/:id/loans",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.OpenLoan, error) {
			uid, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Ledger.OpenLoans(c.Request.Context(), uid)
		},
	})
}

func selfAndBook(c *gin.Context) (*service.Session, int64, int64, error) {
	s := mdw.SessionFrom(c)
	uid, ok := s.CurrentUserID()
	if !ok {
		return nil, 0, 0, domain.ErrUnauthorized
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return nil, 0, 0, err
	}
	return s, uid, bookID, nil
}

func userAndBook(c *gin.Context) (int64, int64, error) {
	uid, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return 0, 0, err
	}
	return uid, bookID, nil
}
