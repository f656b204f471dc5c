// Package catalog administers the economy configuration: templates, odds tables,
// recipes, upgrade rules and wallet grants.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// RecipeCreator stores validated recipes; the crafting service implements it
type RecipeCreator interface {
	CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error)
}

// Service defines the administrative catalog interface
type Service interface {
	Template(ctx context.Context, id int) (*domain.Template, error)
	Templates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error)
	UpsertTemplate(ctx context.Context, tmpl domain.Template) error
	SetDropParams(ctx context.Context, tier int, p domain.DropParams) (*domain.DropParams, error)
	SetBoxDropParams(ctx context.Context, tier int, p domain.BoxDropParams) (*domain.BoxDropParams, error)
	SetUpgradeRules(ctx context.Context, rules domain.UpgradeRules) error
	CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error)
	Recipes(ctx context.Context) ([]domain.Recipe, error)
	GrantCurrency(ctx context.Context, owner string, amount int64) (int64, error)
	CacheStats() CacheStats
}

type service struct {
	store    repository.Store
	recipes  RecipeCreator
	cache    *templateCache
	loads    singleflight.Group
	validate *validator.Validate
}

// NewService creates a new catalog service
func NewService(store repository.Store, recipes RecipeCreator, cacheCfg CacheConfig) Service {
	return &service{
		store:    store,
		recipes:  recipes,
		cache:    newTemplateCache(cacheCfg),
		validate: validator.New(),
	}
}

// Template returns a template, served from cache when possible.
// Concurrent misses for one id share a single store read.
func (s *service) Template(ctx context.Context, id int) (*domain.Template, error) {
	if tmpl, ok := s.cache.Get(id); ok {
		return tmpl, nil
	}
	v, err, _ := s.loads.Do(strconv.Itoa(id), func() (interface{}, error) {
		tmpl, err := s.store.GetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.Set(*tmpl)
		return *tmpl, nil
	})
	if err != nil {
		return nil, err
	}
	tmpl := v.(domain.Template)
	return &tmpl, nil
}

func (s *service) Templates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	return s.store.ListTemplates(ctx, category, tier)
}

func (s *service) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.store.ListRecipes(ctx)
}

func (s *service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// UpsertTemplate creates or replaces a template. Category and tier of live items are
// denormalised at creation, so changing them only affects future items.
func (s *service) UpsertTemplate(ctx context.Context, tmpl domain.Template) error {
	if err := s.check("template", tmpl.ID, tmpl); err != nil {
		return err
	}
	if tmpl.Catalyst != domain.CatalystNone && tmpl.Category.IsEquipment() {
		return fmt.Errorf("template %d: equipment cannot be a catalyst | %w", tmpl.ID, domain.ErrInvalidParams)
	}

	err := s.inTx(ctx, func(tx repository.Tx) error {
		return tx.UpsertTemplate(ctx, tmpl)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(tmpl.ID)
	logger.FromContext(ctx).Info("Template upserted", "template_id", tmpl.ID, "name", tmpl.Name)
	return nil
}

// SetDropParams replaces the odds table of a tier
func (s *service) SetDropParams(ctx context.Context, tier int, p domain.DropParams) (*domain.DropParams, error) {
	if err := s.checkDropParams(tier, &p); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx repository.Tx) error {
		stamp, err := tx.PutDropParams(ctx, p)
		p.BlockCreated = stamp
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Drop params set", "tier", tier, "total_weight", p.TotalWeight(), "block_created", p.BlockCreated)
	return &p, nil
}

// SetBoxDropParams replaces what boxes sealed for a tier will yield. Boxes already
// dropped keep the table they were sealed with.
func (s *service) SetBoxDropParams(ctx context.Context, tier int, p domain.BoxDropParams) (*domain.BoxDropParams, error) {
	if err := s.checkDropParams(tier, &p.DropParams); err != nil {
		return nil, err
	}
	if err := s.check("box drop params", tier, p); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx repository.Tx) error {
		stamp, err := tx.PutBoxDropParams(ctx, p)
		p.BlockCreated = stamp
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Box drop params set", "tier", tier, "block_created", p.BlockCreated)
	return &p, nil
}

// SetUpgradeRules replaces the ritual tables
func (s *service) SetUpgradeRules(ctx context.Context, rules domain.UpgradeRules) error {
	if err := s.check("upgrade rules", 0, rules); err != nil {
		return err
	}
	for l := 1; l < len(rules.SuccessRates); l++ {
		if rules.SuccessRates[l] > rules.SuccessRates[l-1] {
			return fmt.Errorf("upgrade rate at level %d (%d) exceeds level %d (%d) | %w",
				l, rules.SuccessRates[l], l-1, rules.SuccessRates[l-1], domain.ErrInvalidParams)
		}
	}

	err := s.inTx(ctx, func(tx repository.Tx) error {
		return tx.PutUpgradeRules(ctx, rules)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Upgrade rules set", "levels", len(rules.SuccessRates))
	return nil
}

// CreateRecipe delegates to the crafting engine, which owns recipe validation
func (s *service) CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	return s.recipes.CreateRecipe(ctx, recipe)
}

// GrantCurrency adjusts a wallet by amount, which may be negative. Balances never go below zero.
func (s *service) GrantCurrency(ctx context.Context, owner string, amount int64) (int64, error) {
	if owner == domain.Ground || amount == 0 {
		return 0, fmt.Errorf("grant of %d to %q | %w", amount, owner, domain.ErrInvalidInput)
	}

	var balance int64
	err := s.inTx(ctx, func(tx repository.Tx) error {
		var err error
		balance, err = tx.AdjustBalance(ctx, owner, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("Currency granted", "owner", owner, "amount", amount, "balance", balance)
	return balance, nil
}

func (s *service) checkDropParams(tier int, p *domain.DropParams) error {
	if tier < 0 || tier > domain.MaxTier {
		return fmt.Errorf("tier %d outside 0..%d | %w", tier, domain.MaxTier, domain.ErrInvalidParams)
	}
	if p.Tier != 0 && p.Tier != tier {
		return fmt.Errorf("body tier %d does not match tier %d | %w", p.Tier, tier, domain.ErrInvalidParams)
	}
	p.Tier = tier
	p.BlockCreated = 0
	if err := s.check("drop params", tier, *p); err != nil {
		return err
	}
	if p.GoldDropRate > 0 && p.GoldMax == 0 {
		return fmt.Errorf("tier %d drops gold but gold_max is 0 | %w", tier, domain.ErrInvalidParams)
	}
	return nil
}

func (s *service) check(what string, id int, v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%s %d: %v | %w", what, id, err, domain.ErrInvalidParams)
	}
	return nil
}

func (s *service) inTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return repository.WithTx(ctx, s.store, fn)
}
