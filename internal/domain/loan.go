package domain

import (
	"context"
	"time"
)

// DateLayout 借还日期以 ISO-8601 文本存储
const DateLayout = "2006-01-02"

// LoanPeriodDays 借期（固定策略）
const LoanPeriodDays = 14

// NotReturned 历史记录中未归还的展示值
const NotReturned = "not returned"

type Loan struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64   `gorm:"not null;index:idx_loans_user_book" json:"userId"`
	BookID     int64   `gorm:"not null;index:idx_loans_user_book" json:"bookId"`
	BorrowDate string  `gorm:"size:10;not null" json:"borrowDate"`
	ReturnDate *string `gorm:"size:10" json:"returnDate"`
}

func (Loan) TableName() string { return "loans" }

func (l Loan) Open() bool { return l.ReturnDate == nil }

// HistoryEntry 借阅历史行
type HistoryEntry struct {
	Title      string  `json:"title"`
	BorrowDate string  `json:"borrowDate"`
	ReturnDate *string `json:"returnDate"`
}

func (h HistoryEntry) ReturnDateText() string {
	if h.ReturnDate == nil {
		return NotReturned
	}
	return *h.ReturnDate
}

// OpenLoan 当前在借的书
type OpenLoan struct {
	LoanID     int64  `json:"loanId"`
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	BorrowDate string `json:"borrowDate"`
	DueDate    string `json:"dueDate"`
	Overdue    bool   `json:"overdue"`
}

// FormatDate 截取日历日（UTC）
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// DueDate borrowDate + 借期；格式错误返回空串
func DueDate(borrowDate string) string {
	t, err := time.Parse(DateLayout, borrowDate)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, LoanPeriodDays).Format(DateLayout)
}

// OverdueCutoff borrow_date 严格早于该日期的在借记录即为逾期
func OverdueCutoff(today time.Time) string {
	return today.UTC().AddDate(0, 0, -LoanPeriodDays).Format(DateLayout)
}

type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error
	// LatestOpen 该 (user, book) 最近一条未还记录（borrow_date DESC, id DESC）
	LatestOpen(ctx context.Context, userID, bookID int64) (*Loan, error)
	CountOpen(ctx context.Context, userID, bookID int64) (int64, error)
	CountOpenByBook(ctx context.Context, bookID int64) (int64, error)
	Close(ctx context.Context, id int64, returnDate string) (bool, error)
	CountOverdue(ctx context.Context, userID int64, cutoff string) (int64, error)
	History(ctx context.Context, userID int64) ([]HistoryEntry, error)
	OpenByUser(ctx context.Context, userID int64) ([]OpenLoan, error)
}
