// Package backpack handles item custody: listing, trading, dropping to the ground and pickup.
package backpack

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// ItemView is an item together with the display fields of its template
type ItemView struct {
	domain.Item
	Name string `json:"name"`
	Tier int    `json:"tier"`
}

// Inventory is what an owner holds
type Inventory struct {
	Owner   string     `json:"owner"`
	Balance int64      `json:"balance"`
	Items   []ItemView `json:"items"`
}

// Service defines the custody interface
type Service interface {
	Inventory(ctx context.Context, owner string) (*Inventory, error)
	Item(ctx context.Context, itemID int64) (*ItemView, error)
	Transfer(ctx context.Context, caller domain.Caller, itemID int64, to string) (*domain.Item, error)
	Discard(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error)
	Pickup(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error)
	ExpireGround(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	store     repository.Store
	templates repository.TemplateSource
	publisher *event.Publisher
}

// NewService creates a new backpack service. Display lookups go through templates.
func NewService(store repository.Store, templates repository.TemplateSource, publisher *event.Publisher) Service {
	return &service{store: store, templates: templates, publisher: publisher}
}

func (s *service) Inventory(ctx context.Context, owner string) (*Inventory, error) {
	if owner == domain.Ground {
		return nil, fmt.Errorf("owner is required | %w", domain.ErrInvalidInput)
	}
	items, err := s.store.ListItemsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	balance, err := s.store.GetBalance(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	inv := &Inventory{Owner: owner, Balance: balance, Items: make([]ItemView, 0, len(items))}
	for _, item := range items {
		view, err := s.view(ctx, item)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, *view)
	}
	return inv, nil
}

// Item returns the current state of one item regardless of owner
func (s *service) Item(ctx context.Context, itemID int64) (*ItemView, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", itemID, err)
	}
	return s.view(ctx, *item)
}

func (s *service) view(ctx context.Context, item domain.Item) (*ItemView, error) {
	tmpl, err := s.templates.Template(ctx, item.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template %d of item %d: %w", item.TemplateID, item.ID, err)
	}
	return &ItemView{Item: item, Name: tmpl.Name, Tier: tmpl.Tier}, nil
}

// Transfer hands an owned item to another owner
func (s *service) Transfer(ctx context.Context, caller domain.Caller, itemID int64, to string) (*domain.Item, error) {
	if to == domain.Ground || to == caller.ID {
		return nil, fmt.Errorf("cannot transfer item %d to %q | %w", itemID, to, domain.ErrInvalidInput)
	}
	return s.move(ctx, "Transfer", caller.ID, caller.ID, itemID, to)
}

// Discard drops an owned item to the ground where anyone may pick it up
func (s *service) Discard(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error) {
	return s.move(ctx, "Discard", caller.ID, caller.ID, itemID, domain.Ground)
}

// Pickup claims a ground item. When two callers race, the first to commit wins and
// the other fails with ErrStaleItemState.
func (s *service) Pickup(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error) {
	return s.move(ctx, "Pickup", caller.ID, domain.Ground, itemID, caller.ID)
}

// move changes custody of itemID from one owner to another in its own transaction.
// The mutation is attributed to caller.
func (s *service) move(ctx context.Context, op, caller, from string, itemID int64, to string) (*domain.Item, error) {
	log := logger.FromContext(ctx)
	log.Info(op+" called", "caller", caller, "item_id", itemID, "from", from, "to", to)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder()).ActingAs(caller)
	item, err := reg.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Owner != from {
		if from == domain.Ground {
			return nil, fmt.Errorf("item %d is no longer on the ground | %w", itemID, domain.ErrStaleItemState)
		}
		return nil, fmt.Errorf("item %d owned by %q, caller %q | %w", itemID, item.Owner, from, domain.ErrNotOwner)
	}

	moved, err := reg.Mutate(ctx, itemID, domain.ItemPatch{Owner: domain.StringPtr(to)})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info(op+" done", "item_id", itemID, "owner", to)
	return moved, nil
}
