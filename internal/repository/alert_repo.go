package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	WithTx(tx *gorm.DB) AlertRepository
	Create(ctx context.Context, alert *model.Alert) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	// FindActive returns the ACTIVE alert for (itemID, alertType), or gorm.ErrRecordNotFound.
	FindActive(ctx context.Context, itemID uuid.UUID, alertType model.AlertType) (*model.Alert, error)
	Save(ctx context.Context, alert *model.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status model.AlertStatus, page model.PageRequest) ([]model.Alert, int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

func (r *alertRepo) WithTx(tx *gorm.DB) AlertRepository {
	return &alertRepo{tx}
}

func (r *alertRepo) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&alert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) FindActive(ctx context.Context, itemID uuid.UUID, alertType model.AlertType) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND alert_type = ? AND status = ?", itemID, alertType, model.AlertActive).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) Save(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// Delete removes the row for good; alerts have no soft delete.
func (r *alertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Alert{}, "id = ?", id).Error
}

func (r *alertRepo) List(ctx context.Context, status model.AlertStatus, page model.PageRequest) ([]model.Alert, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Alert{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []model.Alert
	err := query.
		Preload("Item", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("CreatedByUser", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("ResolvedByUser", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&alerts).Error
	return alerts, total, err
}

func (r *alertRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Alert{}).Where("status = ?", model.AlertActive).Count(&count).Error
	return count, err
}
