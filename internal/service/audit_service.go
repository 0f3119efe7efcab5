package service

import (
	"context"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Clock supplies audit timestamps.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// AuditRecorder appends and lists audit entries. Entries are never changed once written.
type AuditRecorder struct {
	repo repository.AuditRepository
	now  Clock
}

func NewAuditRecorder(repo repository.AuditRepository, now Clock) *AuditRecorder {
	if now == nil {
		now = utcNow
	}
	return &AuditRecorder{repo: repo, now: now}
}

// Now is the recorder's clock; mutations use it so LastUpdated and the audit timestamp agree.
func (r *AuditRecorder) Now() time.Time {
	return r.now().UTC()
}

// Append writes rec inside tx. A failed append must abort the caller's transaction.
func (r *AuditRecorder) Append(ctx context.Context, tx *gorm.DB, rec model.AuditRecord) (*model.AuditLog, error) {
	if rec.Action == "" || rec.EntityType == "" {
		return nil, invalid("audit entry needs an action and an entity type")
	}
	if rec.UserID == uuid.Nil {
		return nil, invalid("audit entry needs a user")
	}

	entry := &model.AuditLog{
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		UserID:     rec.UserID,
		Timestamp:  r.Now(),
		Details:    rec.Details,
		Change:     datatypes.NewJSONType(rec.Change),
	}

	repo := r.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending audit entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first. An entity id is only accepted together with its type.
func (r *AuditRecorder) List(ctx context.Context, actor model.Actor, filter model.AuditFilter, page model.PageRequest) (model.PageResult[model.AuditLog], error) {
	if err := authorize(actor, model.PrivAuditView); err != nil {
		return model.PageResult[model.AuditLog]{}, err
	}
	if filter.EntityID != nil && filter.EntityType == "" {
		return model.PageResult[model.AuditLog]{}, invalid("entity_id requires entity_type")
	}

	page = page.Normalize()
	entries, total, err := r.repo.List(ctx, filter, page)
	if err != nil {
		return model.PageResult[model.AuditLog]{}, fmt.Errorf("listing audit entries: %w", err)
	}
	return model.NewPageResult(entries, total, page), nil
}

func entityRef(id uuid.UUID) *uuid.UUID {
	return &id
}
