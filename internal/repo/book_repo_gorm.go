package repo

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-loans/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

// fold Unicode 大小写折叠；Caser 有状态，每次新建
func fold(s string) string { return cases.Fold().String(s) }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	b.TitleFold, b.AuthorFold = fold(b.Title), fold(b.Author)
	return wrap(r.db.WithContext(ctx).Create(b).Error)
}

func (r *BookRepo) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &b, nil
}

func (r *BookRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &b, nil
}

func (r *BookRepo) UpdateTitleAuthor(ctx context.Context, id int64, title, author string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title": title, "author": author,
			"title_fold": fold(title), "author_fold": fold(author),
		})
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// mysql 在值未变化时 RowsAffected 为 0，再确认一次是否存在
	b, err := r.FindByID(ctx, id)
	return b != nil, err
}

func (r *BookRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{})
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// List 按插入顺序
func (r *BookRepo) List(ctx context.Context) ([]domain.Book, error) {
	books := []domain.Book{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, wrap(err)
	}
	return books, nil
}

// Search 标题或作者子串匹配，不区分大小写（含非 ASCII）；关键字里的 % _ 按字面处理
func (r *BookRepo) Search(ctx context.Context, keyword string) ([]domain.Book, error) {
	like := "%" + escapeLike(fold(keyword)) + "%"
	books := []domain.Book{}
	err := r.db.WithContext(ctx).
		Where("title_fold LIKE ? ESCAPE '!' OR author_fold LIKE ? ESCAPE '!'", like, like).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, wrap(err)
	}
	return books, nil
}

func (r *BookRepo) BackfillFold(ctx context.Context) (int, error) {
	var stale []domain.Book
	err := r.db.WithContext(ctx).
		Where("(title_fold = '' AND title <> '') OR (author_fold = '' AND author <> '')").
		Find(&stale).Error
	if err != nil {
		return 0, wrap(err)
	}
	for _, b := range stale {
		err := r.db.WithContext(ctx).Model(&domain.Book{}).
			Where("id = ?", b.ID).
			UpdateColumns(map[string]any{"title_fold": fold(b.Title), "author_fold": fold(b.Author)}).Error
		if err != nil {
			return 0, wrap(err)
		}
	}
	return len(stale), nil
}

func (r *BookRepo) DecrementQuantity(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *BookRepo) IncrementQuantity(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", 1))
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	return res.RowsAffected == 1, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
