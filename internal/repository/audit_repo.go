package repository

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository is append-only: no Update or Delete methods exist on it.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Append(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]model.AuditLog, int64, error)
	// ListItemHistory returns the entries of one item that can carry a quantity, newest first.
	ListItemHistory(ctx context.Context, itemID uuid.UUID) ([]model.AuditLog, error)
	TopEntities(ctx context.Context, entityType model.EntityType, limit int) ([]EntityActivity, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error)
}

// EntityActivity is the number of audit entries recorded against one entity.
type EntityActivity struct {
	EntityID uuid.UUID `json:"entity_id"`
	Activity int64     `json:"activity"`
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepo{tx}
}

func (r *auditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]model.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	err := query.
		Order("timestamp DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&entries).Error
	return entries, total, err
}

func (r *auditRepo) ListItemHistory(ctx context.Context, itemID uuid.UUID) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", model.EntityItem, itemID).
		Where("action IN ?", []model.AuditAction{model.ActionCreate, model.ActionUpdate, model.ActionUpdateQuantity}).
		Order("timestamp DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// TopEntities ranks entities by audit volume; ties go to the lower entity id.
func (r *auditRepo) TopEntities(ctx context.Context, entityType model.EntityType, limit int) ([]EntityActivity, error) {
	var rows []EntityActivity
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Select("entity_id, COUNT(id) AS activity").
		Where("entity_type = ? AND entity_id IS NOT NULL", entityType).
		Group("entity_id").
		Order("activity DESC, entity_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListBetween returns entries in [from, to), newest first.
func (r *auditRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
