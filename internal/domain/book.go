package domain

import "context"

type Book struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Author   string `gorm:"size:255;not null" json:"author"`
	ISBN     string `gorm:"column:isbn;size:32;uniqueIndex;not null" json:"isbn"`
	Year     int    `gorm:"not null" json:"year"`
	Quantity int    `gorm:"not null;default:0" json:"quantity"` // 可借库存，永远 >= 0

	// 检索用的大小写折叠副本，由仓储在写入时维护
	TitleFold  string `gorm:"size:512;not null;default:''" json:"-"`
	AuthorFold string `gorm:"size:512;not null;default:''" json:"-"`
}

// 字段长度上限（按字符数），与列宽一致
const (
	MaxTitleLen  = 255
	MaxAuthorLen = 255
	MaxISBNLen   = 32
)

func (Book) TableName() string { return "books" }

// NewBook 新书入库参数
type NewBook struct {
	Title    string `json:"title"    binding:"required"`
	Author   string `json:"author"   binding:"required"`
	ISBN     string `json:"isbn"     binding:"required"`
	Year     int    `json:"year"     binding:"required"`
	Quantity int    `json:"quantity"`
}

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id int64) (*Book, error)
	// FindByIDForUpdate 在事务内加行锁读取（sqlite 忽略锁子句）
	FindByIDForUpdate(ctx context.Context, id int64) (*Book, error)
	UpdateTitleAuthor(ctx context.Context, id int64, title, author string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]Book, error)
	Search(ctx context.Context, keyword string) ([]Book, error)
	// BackfillFold 补齐旧数据的检索列，返回更新行数
	BackfillFold(ctx context.Context) (int, error)
	// DecrementQuantity 仅当 quantity > 0 时减一；返回是否命中
	DecrementQuantity(ctx context.Context, id int64) (bool, error)
	IncrementQuantity(ctx context.Context, id int64) (bool, error)
}
