package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertService interface {
	// EvaluateQuantityChange runs inside the caller's transaction, after the item row
	// has been locked and saved. It returns the alert it raised, if any.
	EvaluateQuantityChange(ctx context.Context, tx *gorm.DB, item *model.Item) (*model.Alert, error)
	CreateAlert(ctx context.Context, actor model.Actor, input model.AlertInput) (*model.Alert, error)
	ResolveAlert(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Alert, error)
	DeleteAlert(ctx context.Context, actor model.Actor, id uuid.UUID) error
	ListAlerts(ctx context.Context, actor model.Actor, status model.AlertStatus, page model.PageRequest) (model.PageResult[model.AlertDetails], error)
}

type alertService struct {
	db          *gorm.DB
	alertRepo   repository.AlertRepository
	itemRepo    repository.ItemRepository
	audit       *AuditRecorder
	systemActor uuid.UUID
	effects     Effects
}

// NewAlertService wires the alert engine. systemActor is recorded as the creator of
// alerts raised automatically.
func NewAlertService(db *gorm.DB, alertRepo repository.AlertRepository, itemRepo repository.ItemRepository, audit *AuditRecorder, systemActor uuid.UUID, effects Effects) AlertService {
	return &alertService{
		db:          db,
		alertRepo:   alertRepo,
		itemRepo:    itemRepo,
		audit:       audit,
		systemActor: systemActor,
		effects:     effects,
	}
}

func (s *alertService) EvaluateQuantityChange(ctx context.Context, tx *gorm.DB, item *model.Item) (*model.Alert, error) {
	// Quantity going back above zero leaves existing alerts for a human to resolve.
	if item.Quantity != 0 {
		return nil, nil
	}

	alerts := s.alertRepo.WithTx(tx)
	_, err := alerts.FindActive(ctx, item.ID, model.AlertOutOfStock)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking active alerts: %w", err)
	}

	itemID := item.ID
	createdBy := s.systemActor
	alert := &model.Alert{
		ItemID:    &itemID,
		AlertType: model.AlertOutOfStock,
		Status:    model.AlertActive,
		Message:   fmt.Sprintf("Item '%s' is out of stock", item.Title),
		CreatedBy: &createdBy,
	}
	if err := alerts.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("creating out-of-stock alert: %w", err)
	}

	_, err = s.audit.Append(ctx, tx, model.AuditRecord{
		Action:     model.ActionCreate,
		EntityType: model.EntityAlert,
		EntityID:   entityRef(alert.ID),
		UserID:     s.systemActor,
		Details:    fmt.Sprintf("Raised %s alert for item '%s'", alert.AlertType, item.Title),
	})
	if err != nil {
		return nil, err
	}

	alert.Item = item
	return alert, nil
}

func (s *alertService) CreateAlert(ctx context.Context, actor model.Actor, input model.AlertInput) (*model.Alert, error) {
	if err := authorize(actor, model.PrivAlertCreate); err != nil {
		return nil, err
	}
	input.Message = strings.TrimSpace(input.Message)
	if err := validate(&input); err != nil {
		return nil, err
	}

	var created *model.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item *model.Item
		if input.ItemID != nil {
			var err error
			item, err = s.itemRepo.WithTx(tx).FindByIDForUpdate(ctx, *input.ItemID)
			if err != nil {
				return notFound(err, ErrItemNotFound, "loading item")
			}
			_, err = s.alertRepo.WithTx(tx).FindActive(ctx, item.ID, input.AlertType)
			if err == nil {
				return ErrAlertConflict
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("checking active alerts: %w", err)
			}
		}

		createdBy := actor.UserID
		alert := &model.Alert{
			ItemID:    input.ItemID,
			AlertType: input.AlertType,
			Status:    model.AlertActive,
			Message:   input.Message,
			CreatedBy: &createdBy,
		}
		if err := s.alertRepo.WithTx(tx).Create(ctx, alert); err != nil {
			return fmt.Errorf("creating alert: %w", err)
		}

		details := fmt.Sprintf("Created %s alert", alert.AlertType)
		if item != nil {
			details += fmt.Sprintf(" for item '%s'", item.Title)
		}
		_, err := s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionCreate,
			EntityType: model.EntityAlert,
			EntityID:   entityRef(alert.ID),
			UserID:     actor.UserID,
			Details:    details,
		})
		if err != nil {
			return err
		}

		alert.Item = item
		created = alert
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.AlertRaised(string(created.AlertType), "manual")
	s.effects.committed(ctx, alertRaisedMessage(created))
	return created, nil
}

// ResolveAlert moves an ACTIVE alert to RESOLVED. Resolving an alert that is
// already resolved reports ErrAlertNotFound and changes nothing.
func (s *alertService) ResolveAlert(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Alert, error) {
	if err := authorize(actor, model.PrivAlertResolve); err != nil {
		return nil, err
	}

	var resolved *model.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alerts := s.alertRepo.WithTx(tx)
		alert, err := alerts.FindForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrAlertNotFound, "loading alert")
		}
		if !alert.IsActive() {
			return ErrAlertNotFound
		}

		now := s.audit.Now()
		resolvedBy := actor.UserID
		alert.Status = model.AlertResolved
		alert.ResolvedAt = &now
		alert.ResolvedBy = &resolvedBy
		if err := alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("resolving alert: %w", err)
		}

		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionUpdate,
			EntityType: model.EntityAlert,
			EntityID:   entityRef(alert.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Resolved %s alert", alert.AlertType),
		})
		if err != nil {
			return err
		}
		resolved = alert
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.AlertResolved()
	s.effects.committed(ctx, &notify.Message{
		Topic:   notify.TopicAlertResolved,
		Subject: "Alert resolved",
		Body:    fmt.Sprintf("%s alert resolved by %s", resolved.AlertType, actor.Email),
		Data:    resolved,
	})
	return resolved, nil
}

func (s *alertService) DeleteAlert(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivAlertDelete); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alerts := s.alertRepo.WithTx(tx)
		alert, err := alerts.FindForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrAlertNotFound, "loading alert")
		}
		if err := alerts.Delete(ctx, alert.ID); err != nil {
			return fmt.Errorf("deleting alert: %w", err)
		}
		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionDelete,
			EntityType: model.EntityAlert,
			EntityID:   entityRef(alert.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Deleted %s alert", alert.AlertType),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.effects.committed(ctx)
	return nil
}

func (s *alertService) ListAlerts(ctx context.Context, actor model.Actor, status model.AlertStatus, page model.PageRequest) (model.PageResult[model.AlertDetails], error) {
	if err := authorize(actor, model.PrivAlertView); err != nil {
		return model.PageResult[model.AlertDetails]{}, err
	}

	status = model.AlertStatus(strings.ToUpper(string(status)))
	switch status {
	case "", model.AlertActive, model.AlertResolved:
	default:
		return model.PageResult[model.AlertDetails]{}, invalid("unknown alert status %q", status)
	}

	page = page.Normalize()
	alerts, total, err := s.alertRepo.List(ctx, status, page)
	if err != nil {
		return model.PageResult[model.AlertDetails]{}, fmt.Errorf("listing alerts: %w", err)
	}

	details := make([]model.AlertDetails, 0, len(alerts))
	for i := range alerts {
		details = append(details, alerts[i].ToDetails())
	}
	return model.NewPageResult(details, total, page), nil
}

// alertRaisedMessage is sent to the live feed and by email.
func alertRaisedMessage(alert *model.Alert) *notify.Message {
	subject := fmt.Sprintf("[Inventory] %s alert", alert.AlertType)
	if alert.AlertType == model.AlertOutOfStock && alert.Item != nil {
		subject = fmt.Sprintf("Out of Stock Alert: %s", alert.Item.Title)
	}
	return &notify.Message{
		Topic:   notify.TopicAlert,
		Subject: subject,
		Body:    alert.Message,
		Data:    alert,
	}
}
