// Package drop resolves weighted random drops and opens sealed boxes.
package drop

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/rng"
)

// Result is the outcome of a drop or a box opening.
// Exactly one of Item or Currency is set unless the roll resolved to nothing.
type Result struct {
	Category domain.Category `json:"category,omitempty"`
	Item     *domain.Item    `json:"item,omitempty"`
	Currency int64           `json:"currency,omitempty"`
}

// Nothing reports whether the roll produced neither an item nor currency
func (r *Result) Nothing() bool {
	return r.Item == nil && r.Currency == 0
}

// Service defines the drop interface
type Service interface {
	Drop(ctx context.Context, caller domain.Caller, tier int, seedHint string) (*Result, error)
	OpenBox(ctx context.Context, caller domain.Caller, itemID int64, seedHint string) (*Result, error)
}

type service struct {
	store     repository.Store
	rng       rng.Provider
	publisher *event.Publisher
}

// NewService creates a new drop service
func NewService(store repository.Store, provider rng.Provider, publisher *event.Publisher) Service {
	return &service{store: store, rng: provider, publisher: publisher}
}

// Drop rolls the odds table of tier once for caller
func (s *service) Drop(ctx context.Context, caller domain.Caller, tier int, seedHint string) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("Drop called", "caller", caller.ID, "tier", tier)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	params, err := tx.GetDropParams(ctx, tier)
	if err != nil {
		return nil, err
	}

	reg := registry.New(tx, event.NewRecorder())
	src := s.rng.Stream(seedHint)
	rates := TraitRates{Luck: BaseTraitRate, Skill: BaseTraitRate, Excellent: params.ExcDropRate}

	result, err := s.resolve(ctx, tx, reg, src, caller, *params, rates)
	if err != nil {
		return nil, err
	}

	reg.Recorder().Record(event.NewItemDroppedEvent(droppedPayload(caller, tier, result, nil)))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info("Drop resolved", "caller", caller.ID, "tier", tier, "category", result.Category, "nothing", result.Nothing())
	return result, nil
}

// OpenBox consumes a sealed box and rolls the odds it was sealed with
func (s *service) OpenBox(ctx context.Context, caller domain.Caller, itemID int64, seedHint string) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("OpenBox called", "caller", caller.ID, "item_id", itemID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	box, err := reg.GetOwned(ctx, itemID, caller.ID)
	if err != nil {
		return nil, err
	}
	if !box.IsBox() {
		return nil, fmt.Errorf("item %d is a %s | %w", itemID, box.Category, domain.ErrNotABox)
	}

	if err := reg.Destroy(ctx, itemID); err != nil {
		return nil, err
	}

	sealed := box.Box.Params
	rates := TraitRates{Luck: sealed.LuckDropRate, Skill: sealed.SkillDropRate, Excellent: sealed.ExcDropRate}
	result, err := s.resolve(ctx, tx, reg, s.rng.Stream(seedHint), caller, sealed.DropParams, rates)
	if err != nil {
		return nil, err
	}

	reg.Recorder().Record(event.NewItemDroppedEvent(droppedPayload(caller, box.Box.Tier, result, &itemID)))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info("Box opened", "caller", caller.ID, "item_id", itemID, "sealed_at", box.Box.BlockCreated, "category", result.Category)
	return result, nil
}

// resolve runs category selection, template choice and attribute rolls against one odds table
func (s *service) resolve(ctx context.Context, tx repository.Tx, reg *registry.Registry, src rng.Source, caller domain.Caller, params domain.DropParams, rates TraitRates) (*Result, error) {
	category, ok := PickCategory(src, params.CategoryWeights())
	if !ok {
		return &Result{}, nil
	}

	switch category {
	case domain.CategoryGold:
		if params.GoldMin < 0 || params.GoldMax > domain.MaxGold {
			return nil, fmt.Errorf("tier %d gold range %d..%d exceeds %d | %w",
				params.Tier, params.GoldMin, params.GoldMax, domain.MaxGold, domain.ErrInvalidParams)
		}
		amount := int64(rng.Between(src, int(params.GoldMin), int(params.GoldMax)))
		if amount > 0 {
			if _, err := tx.AdjustBalance(ctx, caller.ID, amount); err != nil {
				return nil, fmt.Errorf("failed to credit gold: %w", err)
			}
		}
		return &Result{Category: category, Currency: amount}, nil

	case domain.CategoryBox:
		return s.dropBox(ctx, tx, reg, src, caller, params)
	}

	templates, err := tx.ListTemplates(ctx, category, params.Tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	eligible := Eligible(templates, params.MinItemLevel)
	if len(eligible) == 0 {
		return &Result{Category: category}, nil
	}
	tmpl := eligible[src.Intn(len(eligible))]

	attrs := RollAttributes(src, &tmpl, params.MinItemLevel, params.MaxItemLevel, 0, params.MaxAddPoints, rates)
	item, err := reg.Create(ctx, tmpl.ID, attrs, caller.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Category: category, Item: item}, nil
}

// SealBox captures the current odds of box tier so later config writes do not change
// what the box yields. Fails with domain.ErrNotFound when the tier has no box params.
func SealBox(ctx context.Context, cfg repository.ConfigReader, tier int) (*domain.SealedBox, error) {
	p, err := cfg.GetBoxDropParams(ctx, tier)
	if err != nil {
		return nil, err
	}
	return &domain.SealedBox{Tier: tier, Params: *p, BlockCreated: p.BlockCreated}, nil
}

// dropBox seals the current odds of box tier params.BoxID into a new box item
func (s *service) dropBox(ctx context.Context, tx repository.Tx, reg *registry.Registry, src rng.Source, caller domain.Caller, params domain.DropParams) (*Result, error) {
	sealed, err := SealBox(ctx, tx, params.BoxID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Result{Category: domain.CategoryBox}, nil
		}
		return nil, fmt.Errorf("failed to load box params: %w", err)
	}

	templates, err := tx.ListTemplates(ctx, domain.CategoryBox, params.BoxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(templates) == 0 {
		return &Result{Category: domain.CategoryBox}, nil
	}
	tmpl := templates[src.Intn(len(templates))]

	level := params.BoxID
	if level > tmpl.LevelCap() {
		level = tmpl.LevelCap()
	}
	attrs := domain.ItemAttributes{Level: level, Box: sealed}
	item, err := reg.Create(ctx, tmpl.ID, attrs, caller.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Category: domain.CategoryBox, Item: item}, nil
}

func droppedPayload(caller domain.Caller, tier int, r *Result, boxID *int64) event.ItemDroppedPayloadV1 {
	p := event.ItemDroppedPayloadV1{
		CallerID: caller.ID,
		Tier:     tier,
		Category: r.Category,
		Currency: r.Currency,
		BoxID:    boxID,
	}
	if r.Item != nil {
		id := r.Item.ID
		p.ItemID = &id
	}
	return p
}
