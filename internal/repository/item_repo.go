package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	Create(ctx context.Context, item *model.Item) error
	CreateBatch(ctx context.Context, items []*model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error)
	Save(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter model.ItemFilter, page model.PageRequest) ([]model.Item, int64, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) WithTx(tx *gorm.DB) ItemRepository {
	return &itemRepo{tx}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) CreateBatch(ctx context.Context, items []*model.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(items).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *itemRepo) Save(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete is a soft delete; audit entries keep referring to the id.
func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, "id = ?", id).Error
}

// List returns the most recently touched items first.
func (r *itemRepo) List(ctx context.Context, filter model.ItemFilter, page model.PageRequest) ([]model.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Item{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Item
	err := query.
		Order("last_updated DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&items).Error
	return items, total, err
}
