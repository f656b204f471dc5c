// Package upgrade runs the level and add point rituals that consume a catalyst item.
package upgrade

import (
	"context"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/rng"
)

// Outcome is the terminal state of one ritual. Destruction is an outcome, not an error.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeUnchanged  Outcome = "unchanged"
	OutcomeDowngraded Outcome = "downgraded"
	OutcomeDestroyed  Outcome = "destroyed"
)

// Ritual names which attribute an attempt targets
type Ritual string

const (
	RitualLevel     Ritual = "level"
	RitualAddPoints Ritual = "add_points"
)

// Result reports one upgrade attempt. After is nil when the item was destroyed.
type Result struct {
	Ritual     Ritual       `json:"ritual"`
	Outcome    Outcome      `json:"outcome"`
	Chance     int          `json:"chance"`
	Before     *domain.Item `json:"before"`
	After      *domain.Item `json:"after,omitempty"`
	CatalystID int64        `json:"catalyst_id"`
}

// Service defines the upgrade interface
type Service interface {
	UpgradeLevel(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*Result, error)
	UpgradeAddPoints(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*Result, error)
}

type service struct {
	store     repository.Store
	rng       rng.Provider
	publisher *event.Publisher
}

// NewService creates a new upgrade service
func NewService(store repository.Store, provider rng.Provider, publisher *event.Publisher) Service {
	return &service{store: store, rng: provider, publisher: publisher}
}

// attempt is a validated ritual ready to roll
type attempt struct {
	item     *domain.Item
	template *domain.Template
	catalyst *domain.Item
	rules    *domain.UpgradeRules
}

// UpgradeLevel tries to raise the item level by one
func (s *service) UpgradeLevel(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*Result, error) {
	return s.run(ctx, caller, RitualLevel, itemID, catalystID, seedHint)
}

// UpgradeAddPoints tries to raise the item's add point pool by the configured increment
func (s *service) UpgradeAddPoints(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*Result, error) {
	return s.run(ctx, caller, RitualAddPoints, itemID, catalystID, seedHint)
}

func (s *service) run(ctx context.Context, caller domain.Caller, ritual Ritual, itemID, catalystID int64, seedHint string) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("Upgrade called", "caller", caller.ID, "ritual", ritual, "item_id", itemID, "catalyst_id", catalystID)

	if itemID == catalystID {
		return nil, fmt.Errorf("item %d used as its own catalyst | %w", itemID, domain.ErrDuplicateSlot)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	a, err := s.validateAttempt(ctx, tx, reg, caller, ritual, itemID, catalystID)
	if err != nil {
		log.Warn("Upgrade rejected", "caller", caller.ID, "item_id", itemID, "error", err)
		return nil, err
	}

	// Validation is complete; from here only infrastructure failures abort
	if err := reg.Destroy(ctx, catalystID); err != nil {
		return nil, err
	}

	src := s.rng.Stream(seedHint)
	var result *Result
	switch ritual {
	case RitualLevel:
		result, err = rollLevel(ctx, reg, src, a)
	default:
		result, err = rollAddPoints(ctx, reg, src, a)
	}
	if err != nil {
		return nil, err
	}
	result.Ritual = ritual
	result.CatalystID = catalystID

	reg.Recorder().Record(event.NewUpgradeAttemptedEvent(attemptedPayload(caller, result)))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info("Upgrade resolved", "caller", caller.ID, "item_id", itemID, "ritual", ritual, "outcome", result.Outcome, "chance", result.Chance)
	return result, nil
}

func (s *service) validateAttempt(ctx context.Context, tx repository.Tx, reg *registry.Registry, caller domain.Caller, ritual Ritual, itemID, catalystID int64) (*attempt, error) {
	item, err := reg.GetOwned(ctx, itemID, caller.ID)
	if err != nil {
		return nil, err
	}
	catalyst, err := reg.GetOwned(ctx, catalystID, caller.ID)
	if err != nil {
		return nil, err
	}
	tmpl, err := reg.Template(ctx, item.TemplateID)
	if err != nil {
		return nil, err
	}
	catTmpl, err := reg.Template(ctx, catalyst.TemplateID)
	if err != nil {
		return nil, err
	}
	rules, err := tx.GetUpgradeRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upgrade rules: %w", err)
	}

	if !item.Category.IsEquipment() {
		return nil, fmt.Errorf("%s items cannot be upgraded | %w", item.Category, domain.ErrInvariantViolation)
	}

	want := requiredCatalyst(ritual, item.Level, rules)
	if catTmpl.Catalyst != want {
		return nil, fmt.Errorf("item %d at level %d needs a %s catalyst, got %q | %w",
			itemID, item.Level, want, catTmpl.Catalyst, domain.ErrWrongCatalyst)
	}

	switch ritual {
	case RitualLevel:
		if item.Level >= tmpl.LevelCap() {
			return nil, fmt.Errorf("item %d already at level cap %d | %w", itemID, tmpl.LevelCap(), domain.ErrInvariantViolation)
		}
	case RitualAddPoints:
		if pool(item) >= domain.MaxAddPoints {
			return nil, fmt.Errorf("item %d add point pool already at %d | %w", itemID, domain.MaxAddPoints, domain.ErrInvariantViolation)
		}
	}

	return &attempt{item: item, template: tmpl, catalyst: catalyst, rules: rules}, nil
}

// requiredCatalyst returns the catalyst band for a ritual at the given level
func requiredCatalyst(ritual Ritual, level int, rules *domain.UpgradeRules) domain.CatalystKind {
	if ritual == RitualAddPoints {
		return domain.CatalystBonus
	}
	if level < rules.GreaterThreshold {
		return domain.CatalystLesser
	}
	return domain.CatalystGreater
}

func rollLevel(ctx context.Context, reg *registry.Registry, src rng.Source, a *attempt) (*Result, error) {
	item := a.item
	chance := a.rules.SuccessRate(item.Level, item.Luck)
	result := &Result{Chance: chance, Before: item}

	switch {
	case rng.Percent(src, chance):
		return mutate(ctx, reg, result, OutcomeSuccess, domain.ItemPatch{Level: domain.IntPtr(item.Level + 1)})
	case item.Level < a.rules.GreaterThreshold, item.Luck:
		result.Outcome = OutcomeUnchanged
		result.After = item
		return result, nil
	case item.Level < a.rules.DestroyThreshold:
		return mutate(ctx, reg, result, OutcomeDowngraded, domain.ItemPatch{Level: domain.IntPtr(item.Level - 1)})
	}

	if err := reg.Destroy(ctx, item.ID); err != nil {
		return nil, err
	}
	result.Outcome = OutcomeDestroyed
	return result, nil
}

func rollAddPoints(ctx context.Context, reg *registry.Registry, src rng.Source, a *attempt) (*Result, error) {
	item := a.item
	chance := a.rules.AddPointsSuccessRate
	if item.Luck {
		chance += a.rules.LuckBonus
	}
	if chance > 100 {
		chance = 100
	}
	result := &Result{Chance: chance, Before: item}
	current := pool(item)

	if rng.Percent(src, chance) {
		next := current + a.rules.AddPointsIncrement
		if next > domain.MaxAddPoints {
			next = domain.MaxAddPoints
		}
		return mutate(ctx, reg, result, OutcomeSuccess, poolPatch(item, next))
	}

	if item.Luck || current == 0 {
		result.Outcome = OutcomeUnchanged
		result.After = item
		return result, nil
	}
	next := current - a.rules.AddPointsIncrement
	if next < 0 {
		next = 0
	}
	return mutate(ctx, reg, result, OutcomeDowngraded, poolPatch(item, next))
}

func mutate(ctx context.Context, reg *registry.Registry, result *Result, outcome Outcome, patch domain.ItemPatch) (*Result, error) {
	after, err := reg.Mutate(ctx, result.Before.ID, patch)
	if err != nil {
		return nil, err
	}
	result.Outcome = outcome
	result.After = after
	return result, nil
}

// pool returns the add point pool a ritual works on: damage for weapons, defense otherwise
func pool(item *domain.Item) int {
	if item.Category == domain.CategoryWeapon {
		return item.AdditionalDamage
	}
	return item.AdditionalDefense
}

func poolPatch(item *domain.Item, value int) domain.ItemPatch {
	if item.Category == domain.CategoryWeapon {
		return domain.ItemPatch{AdditionalDamage: domain.IntPtr(value)}
	}
	return domain.ItemPatch{AdditionalDefense: domain.IntPtr(value)}
}

func attemptedPayload(caller domain.Caller, r *Result) event.UpgradeAttemptedPayloadV1 {
	p := event.UpgradeAttemptedPayloadV1{
		ItemID:     r.Before.ID,
		CatalystID: r.CatalystID,
		CallerID:   caller.ID,
		Ritual:     string(r.Ritual),
		Before:     event.StateOf(r.Before),
		Outcome:    string(r.Outcome),
	}
	if r.After != nil {
		p.After = event.StateOf(r.After)
	}
	return p
}
