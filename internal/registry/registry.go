// Package registry owns canonical item records. Every call runs on the caller's
// transaction, so registry changes commit or roll back with the economy operation.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Backend is the slice of a transaction the registry needs
type Backend interface {
	repository.Items
	GetTemplate(ctx context.Context, id int) (*domain.Template, error)
}

// Registry creates, reads, mutates and destroys items inside one transaction
type Registry struct {
	tx    Backend
	rec   *event.Recorder
	actor string
}

// New binds a registry to a transaction. rec may be nil when events are not wanted.
func New(tx Backend, rec *event.Recorder) *Registry {
	if rec == nil {
		rec = event.NewRecorder()
	}
	return &Registry{tx: tx, rec: rec}
}

// ActingAs attributes later mutations to caller instead of the item's prior owner
func (r *Registry) ActingAs(caller string) *Registry {
	r.actor = caller
	return r
}

// Recorder returns the buffer holding this registry's events
func (r *Registry) Recorder() *event.Recorder {
	return r.rec
}

// Template resolves a template, mapping unknown ids to ErrInvalidTemplate
func (r *Registry) Template(ctx context.Context, id int) (*domain.Template, error) {
	tmpl, err := r.tx.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("template %d | %w", id, domain.ErrInvalidTemplate)
		}
		return nil, fmt.Errorf("failed to load template %d: %w", id, err)
	}
	return tmpl, nil
}

// Create stores a new item built from a template
func (r *Registry) Create(ctx context.Context, templateID int, attrs domain.ItemAttributes, owner string) (*domain.Item, error) {
	tmpl, err := r.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if err := checkAttributes(tmpl, attrs); err != nil {
		return nil, err
	}

	item := &domain.Item{
		TemplateID:        tmpl.ID,
		Category:          tmpl.Category,
		Level:             attrs.Level,
		AdditionalDamage:  attrs.AdditionalDamage,
		AdditionalDefense: attrs.AdditionalDefense,
		Luck:              attrs.Luck,
		Skill:             attrs.Skill,
		Excellent:         attrs.Excellent,
		Box:               attrs.Box,
		Owner:             owner,
	}
	if _, err := r.tx.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	r.rec.Record(event.NewItemCreatedEvent(item))
	return item, nil
}

// Get loads an item and claims it for the rest of the transaction
func (r *Registry) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := r.tx.GetItemForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetOwned loads an item and checks custody
func (r *Registry) GetOwned(ctx context.Context, id int64, owner string) (*domain.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Owner != owner {
		return nil, fmt.Errorf("item %d owned by %q, caller %q | %w", id, item.Owner, owner, domain.ErrNotOwner)
	}
	return item, nil
}

// Mutate applies a patch. Only level, add points and owner may change.
func (r *Registry) Mutate(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.TemplateID != nil && *patch.TemplateID != item.TemplateID {
		return nil, fmt.Errorf("item %d template is fixed at %d, patch wants %d | %w",
			id, item.TemplateID, *patch.TemplateID, domain.ErrInvariantViolation)
	}
	if patch.Excellent != nil && *patch.Excellent != item.Excellent {
		return nil, fmt.Errorf("item %d excellent flags are fixed at %s | %w",
			id, item.Excellent, domain.ErrInvariantViolation)
	}

	tmpl, err := r.Template(ctx, item.TemplateID)
	if err != nil {
		return nil, err
	}

	before := event.StateOf(item)
	next := item.Clone()
	if patch.Level != nil {
		next.Level = *patch.Level
	}
	if patch.AdditionalDamage != nil {
		next.AdditionalDamage = *patch.AdditionalDamage
	}
	if patch.AdditionalDefense != nil {
		next.AdditionalDefense = *patch.AdditionalDefense
	}
	if patch.Owner != nil {
		next.Owner = *patch.Owner
	}
	if err := checkBounds(tmpl, next.Level, next.AdditionalDamage, next.AdditionalDefense); err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}

	if err := r.tx.UpdateItem(ctx, next, item.Version); err != nil {
		return nil, err
	}

	r.rec.Record(event.NewItemMutatedEvent(id, r.actor, before, event.StateOf(next)))
	return next, nil
}

// Destroy removes an item permanently. A second destroy of the same id fails with ErrNotFound.
func (r *Registry) Destroy(ctx context.Context, id int64) error {
	item, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.tx.DeleteItem(ctx, id); err != nil {
		return err
	}
	r.rec.Record(event.NewItemDestroyedEvent(item))
	return nil
}

func checkAttributes(tmpl *domain.Template, a domain.ItemAttributes) error {
	if err := checkBounds(tmpl, a.Level, a.AdditionalDamage, a.AdditionalDefense); err != nil {
		return err
	}
	if !a.Excellent.Valid() {
		return fmt.Errorf("unknown excellent bits %#x | %w", uint16(a.Excellent), domain.ErrInvariantViolation)
	}
	if !tmpl.Category.IsEquipment() {
		if a.Luck || a.Skill || a.Excellent != 0 || a.AdditionalDamage != 0 || a.AdditionalDefense != 0 {
			return fmt.Errorf("%s items carry no traits or add points | %w", tmpl.Category, domain.ErrInvariantViolation)
		}
	}
	if a.Skill && tmpl.Category != domain.CategoryWeapon {
		return fmt.Errorf("skill is weapon only | %w", domain.ErrInvariantViolation)
	}
	if a.Box != nil && tmpl.Category != domain.CategoryBox {
		return fmt.Errorf("only box items can be sealed | %w", domain.ErrInvariantViolation)
	}
	return nil
}

func checkBounds(tmpl *domain.Template, level, damage, defense int) error {
	if level < 0 || level > tmpl.LevelCap() {
		return fmt.Errorf("level %d outside [0,%d] | %w", level, tmpl.LevelCap(), domain.ErrInvariantViolation)
	}
	if damage < 0 || damage > domain.MaxAddPoints {
		return fmt.Errorf("additional damage %d outside [0,%d] | %w", damage, domain.MaxAddPoints, domain.ErrInvariantViolation)
	}
	if defense < 0 || defense > domain.MaxAddPoints {
		return fmt.Errorf("additional defense %d outside [0,%d] | %w", defense, domain.MaxAddPoints, domain.ErrInvariantViolation)
	}
	return nil
}
