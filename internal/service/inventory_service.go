package service

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService is the stock mutation service. Every mutation runs as one
// transaction: lock and change the item, evaluate alerts, append the audit entry.
// Notifications go out only after the commit.
type InventoryService interface {
	CreateItem(ctx context.Context, actor model.Actor, input model.ItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, actor model.Actor, id uuid.UUID, patch model.ItemPatch) (*model.Item, error)
	UpdateQuantity(ctx context.Context, actor model.Actor, id uuid.UUID, quantity int) (*model.Item, error)
	CreateItemsBulk(ctx context.Context, actor model.Actor, inputs []model.ItemInput) ([]model.Item, error)
	DeleteItem(ctx context.Context, actor model.Actor, id uuid.UUID) error
	GetItem(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Item, error)
	ListItems(ctx context.Context, actor model.Actor, filter model.ItemFilter, page model.PageRequest) (model.PageResult[model.Item], error)
}

type inventoryService struct {
	db       *gorm.DB
	itemRepo repository.ItemRepository
	alerts   AlertService
	audit    *AuditRecorder
	effects  Effects
}

func NewInventoryService(db *gorm.DB, itemRepo repository.ItemRepository, alerts AlertService, audit *AuditRecorder, effects Effects) InventoryService {
	return &inventoryService{
		db:       db,
		itemRepo: itemRepo,
		alerts:   alerts,
		audit:    audit,
		effects:  effects,
	}
}

// StockEvent is the payload of stock_update notifications.
type StockEvent struct {
	Action      string      `json:"action"`
	Item        *model.Item `json:"item,omitempty"`
	OldQuantity *int        `json:"old_quantity,omitempty"`
	ItemCount   int         `json:"item_count,omitempty"`
	Actor       string      `json:"actor"`
}

func (s *inventoryService) CreateItem(ctx context.Context, actor model.Actor, input model.ItemInput) (*model.Item, error) {
	if err := authorize(actor, model.PrivItemCreate); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validate(&input); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, invalid("title cannot be empty")
	}

	item := input.ToItem(s.audit.Now())
	var raised *model.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
			return fmt.Errorf("creating item: %w", err)
		}

		var err error
		if raised, err = s.alerts.EvaluateQuantityChange(ctx, tx, item); err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionCreate,
			EntityType: model.EntityItem,
			EntityID:   entityRef(item.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Created item '%s'", item.Title),
			Change:     model.InitialQuantity(item.Quantity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.StockMutation("create")
	s.committed(ctx, stockMessage(actor, fmt.Sprintf("%s created item '%s'", actor.Email, item.Title),
		StockEvent{Action: "item_created", Item: item}), raised)
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actor model.Actor, id uuid.UUID, patch model.ItemPatch) (*model.Item, error) {
	if err := authorize(actor, model.PrivItemUpdate); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, invalid("no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	var (
		item     *model.Item
		previous int
		raised   *model.Alert
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		var err error
		item, err = items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrItemNotFound, "loading item")
		}
		previous = item.Quantity

		fields, err := patch.Apply(item)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		item.Touch(s.audit.Now())
		if err := items.Save(ctx, item); err != nil {
			return fmt.Errorf("updating item: %w", err)
		}

		rec := model.AuditRecord{
			Action:     model.ActionUpdate,
			EntityType: model.EntityItem,
			EntityID:   entityRef(item.ID),
			UserID:     actor.UserID,
			Details:    "Updated fields: " + strings.Join(fields, ", "),
		}
		if patch.Quantity.Set {
			if raised, err = s.alerts.EvaluateQuantityChange(ctx, tx, item); err != nil {
				return err
			}
			rec.Details = model.QuantityDetails(item.Quantity)
			rec.Change = model.QuantityChange(previous, item.Quantity)
		}
		_, err = s.audit.Append(ctx, tx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.StockMutation("update")
	s.committed(ctx, stockMessage(actor, fmt.Sprintf("%s updated item '%s'", actor.Email, item.Title),
		StockEvent{Action: "item_updated", Item: item, OldQuantity: &previous}), raised)
	return item, nil
}

func (s *inventoryService) UpdateQuantity(ctx context.Context, actor model.Actor, id uuid.UUID, quantity int) (*model.Item, error) {
	if err := authorize(actor, model.PrivItemUpdateQuantity); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, invalid("quantity must be a non-negative integer")
	}

	var (
		item     *model.Item
		previous int
		raised   *model.Alert
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		var err error
		item, err = items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrItemNotFound, "loading item")
		}

		previous = item.Quantity
		item.Quantity = quantity
		item.Touch(s.audit.Now())
		if err := items.Save(ctx, item); err != nil {
			return fmt.Errorf("updating quantity: %w", err)
		}

		if raised, err = s.alerts.EvaluateQuantityChange(ctx, tx, item); err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionUpdateQuantity,
			EntityType: model.EntityItem,
			EntityID:   entityRef(item.ID),
			UserID:     actor.UserID,
			Details:    model.QuantityDetails(quantity),
			Change:     model.QuantityChange(previous, quantity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.StockMutation("update_quantity")
	s.committed(ctx, stockMessage(actor, fmt.Sprintf("%s set '%s' quantity to %d", actor.Email, item.Title, quantity),
		StockEvent{Action: "quantity_updated", Item: item, OldQuantity: &previous}), raised)
	return item, nil
}

// CreateItemsBulk creates all items or none and records a single BULK_CREATE entry.
func (s *inventoryService) CreateItemsBulk(ctx context.Context, actor model.Actor, inputs []model.ItemInput) ([]model.Item, error) {
	if err := authorize(actor, model.PrivItemCreate); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, invalid("at least one item is required")
	}

	now := s.audit.Now()
	items := make([]*model.Item, 0, len(inputs))
	for i := range inputs {
		inputs[i].Title = strings.TrimSpace(inputs[i].Title)
		if err := validate(&inputs[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, inputs[i].ToItem(now))
	}

	var raised []*model.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.WithTx(tx).CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("creating items: %w", err)
		}

		for _, item := range items {
			alert, err := s.alerts.EvaluateQuantityChange(ctx, tx, item)
			if err != nil {
				return err
			}
			if alert != nil {
				raised = append(raised, alert)
			}
		}

		_, err := s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionBulkCreate,
			EntityType: model.EntityItem,
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Bulk created %d items", len(items)),
			Change:     model.StockChange{ItemCount: len(items)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.effects.Metrics.StockMutation("bulk_create")
	s.committed(ctx, stockMessage(actor, fmt.Sprintf("%s imported %d items", actor.Email, len(items)),
		StockEvent{Action: "items_imported", ItemCount: len(items)}), raised...)

	created := make([]model.Item, 0, len(items))
	for _, item := range items {
		created = append(created, *item)
	}
	return created, nil
}

// DeleteItem soft-deletes the item; its audit trail stays readable.
func (s *inventoryService) DeleteItem(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivItemDelete); err != nil {
		return err
	}

	var item *model.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		var err error
		item, err = items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrItemNotFound, "loading item")
		}
		if err := items.Delete(ctx, item.ID); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionDelete,
			EntityType: model.EntityItem,
			EntityID:   entityRef(item.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Deleted item '%s'", item.Title),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.effects.Metrics.StockMutation("delete")
	s.committed(ctx, stockMessage(actor, fmt.Sprintf("%s deleted item '%s'", actor.Email, item.Title),
		StockEvent{Action: "item_deleted", Item: item}))
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Item, error) {
	if err := authorize(actor, model.PrivItemView); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, "loading item")
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, actor model.Actor, filter model.ItemFilter, page model.PageRequest) (model.PageResult[model.Item], error) {
	if err := authorize(actor, model.PrivItemView); err != nil {
		return model.PageResult[model.Item]{}, err
	}
	page = page.Normalize()
	items, total, err := s.itemRepo.List(ctx, filter, page)
	if err != nil {
		return model.PageResult[model.Item]{}, fmt.Errorf("listing items: %w", err)
	}
	return model.NewPageResult(items, total, page), nil
}

func (s *inventoryService) committed(ctx context.Context, stock *notify.Message, raised ...*model.Alert) {
	msgs := []*notify.Message{stock}
	for _, alert := range raised {
		if alert == nil {
			continue
		}
		s.effects.Metrics.AlertRaised(string(alert.AlertType), "system")
		msgs = append(msgs, alertRaisedMessage(alert))
	}
	s.effects.committed(ctx, msgs...)
}

func stockMessage(actor model.Actor, body string, event StockEvent) *notify.Message {
	event.Actor = actor.Email
	return &notify.Message{
		Topic:   notify.TopicStockUpdate,
		Subject: "Stock update",
		Body:    body,
		Data:    event,
	}
}
