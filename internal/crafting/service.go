// Package crafting resolves chaos combinations: a set of submitted items is matched
// against recipes and consumed, possibly yielding one new item.
package crafting

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/rng"
)

// Outcome of a combination
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeNoMatch Outcome = "no_match"
)

// CombineResult reports a combination. Item is set only on success.
type CombineResult struct {
	Outcome  Outcome      `json:"outcome"`
	RecipeID int          `json:"recipe_id,omitempty"`
	Chance   int          `json:"chance"`
	Item     *domain.Item `json:"item,omitempty"`
	Consumed []int64      `json:"consumed"`
}

// CombineRequest is one submission to the chaos machine
type CombineRequest struct {
	ItemIDs []int64
	// RecipeHint restricts matching to one recipe when positive
	RecipeHint int
	// Recipient owns the output; defaults to the caller
	Recipient string
	SeedHint  string
}

// Service defines the crafting interface
type Service interface {
	Combine(ctx context.Context, caller domain.Caller, req CombineRequest) (*CombineResult, error)
	CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error)
}

type service struct {
	store     repository.Store
	rng       rng.Provider
	publisher *event.Publisher
	validate  *validator.Validate
}

// NewService creates a new crafting service
func NewService(store repository.Store, provider rng.Provider, publisher *event.Publisher) Service {
	return &service{
		store:     store,
		rng:       provider,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Combine consumes every submitted item. A submission that matches no recipe is still
// consumed and reported as OutcomeNoMatch together with domain.ErrNoRecipeMatch.
func (s *service) Combine(ctx context.Context, caller domain.Caller, req CombineRequest) (*CombineResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Combine called", "caller", caller.ID, "items", req.ItemIDs, "recipe_hint", req.RecipeHint)

	if err := checkSubmission(req.ItemIDs); err != nil {
		return nil, err
	}
	recipient := req.Recipient
	if recipient == "" {
		recipient = caller.ID
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	items := make([]*domain.Item, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		item, err := reg.GetOwned(ctx, id, caller.ID)
		if err != nil {
			log.Warn("Combine rejected", "caller", caller.ID, "item_id", id, "error", err)
			return nil, err
		}
		items = append(items, item)
	}

	candidates, err := s.candidateRecipes(ctx, tx, req.RecipeHint)
	if err != nil {
		return nil, err
	}
	recipe := bestRecipe(items, candidates)

	// Validation is complete; every input is consumed from here on
	for _, id := range req.ItemIDs {
		if err := reg.Destroy(ctx, id); err != nil {
			return nil, err
		}
	}
	result := &CombineResult{Consumed: append([]int64(nil), req.ItemIDs...)}

	if recipe == nil {
		result.Outcome = OutcomeNoMatch
		reg.Recorder().Record(event.NewRecipeResolvedEvent(0, caller.ID, req.ItemIDs, nil, false))
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		reg.Recorder().Flush(ctx, s.publisher)

		log.Info("Combine matched no recipe", "caller", caller.ID, "consumed", len(req.ItemIDs))
		return result, fmt.Errorf("items %v | %w", req.ItemIDs, domain.ErrNoRecipeMatch)
	}

	result.RecipeID = recipe.ID
	result.Chance = recipe.SuccessRate
	src := s.rng.Stream(req.SeedHint)

	var outputID *int64
	if rng.Percent(src, recipe.SuccessRate) {
		item, err := craftOutput(ctx, tx, reg, src, recipe, recipient)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeSuccess
		result.Item = item
		outputID = &item.ID
	} else {
		result.Outcome = OutcomeFailure
	}

	reg.Recorder().Record(event.NewRecipeResolvedEvent(recipe.ID, caller.ID, req.ItemIDs, outputID, outputID != nil))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info("Combine resolved", "caller", caller.ID, "recipe_id", recipe.ID, "outcome", result.Outcome)
	return result, nil
}

func checkSubmission(ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("empty submission | %w", domain.ErrInvalidInput)
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("item %d submitted twice | %w", id, domain.ErrDuplicateSlot)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *service) candidateRecipes(ctx context.Context, tx repository.Tx, hint int) ([]domain.Recipe, error) {
	if hint > 0 {
		r, err := tx.GetRecipe(ctx, hint)
		if err != nil {
			return nil, err
		}
		return []domain.Recipe{*r}, nil
	}
	recipes, err := tx.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// craftOutput picks one candidate and rolls it within the candidate's bounds.
// Box outputs are sealed with the current odds of the box template's tier.
func craftOutput(ctx context.Context, cfg repository.ConfigReader, reg *registry.Registry, src rng.Source, recipe *domain.Recipe, owner string) (*domain.Item, error) {
	out := recipe.OutputCandidates[src.Intn(len(recipe.OutputCandidates))]
	tmpl, err := reg.Template(ctx, out.TemplateID)
	if err != nil {
		return nil, err
	}
	rates := drop.TraitRates{Luck: drop.BaseTraitRate, Skill: drop.BaseTraitRate, Excellent: recipe.ExcRate}
	attrs := drop.RollAttributes(src, tmpl, out.MinLevel, out.MaxLevel, out.MinAddPoints, out.MaxAddPoints, rates)
	if !tmpl.Category.IsEquipment() {
		attrs.Level = rng.Between(src, out.MinLevel, min(out.MaxLevel, tmpl.LevelCap()))
	}
	if tmpl.Category == domain.CategoryBox {
		attrs.Box, err = drop.SealBox(ctx, cfg, tmpl.Tier)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("recipe %d outputs %s but tier %d has no box params | %w",
					recipe.ID, tmpl.Name, tmpl.Tier, domain.ErrInvalidParams)
			}
			return nil, fmt.Errorf("failed to seal box: %w", err)
		}
	}
	return reg.Create(ctx, tmpl.ID, attrs, owner)
}

// checkOutput rejects candidates the registry could never create
func checkOutput(ctx context.Context, cfg repository.ConfigReader, name string, c domain.ItemConstraint) error {
	tmpl, err := cfg.GetTemplate(ctx, c.TemplateID)
	if err != nil {
		return fmt.Errorf("recipe %q references template %d: %v | %w", name, c.TemplateID, err, domain.ErrInvalidParams)
	}
	if tmpl.Category.IsEquipment() {
		return nil
	}
	if c.MinAddPoints > 0 {
		return fmt.Errorf("recipe %q wants add points on %s item %s | %w", name, tmpl.Category, tmpl.Name, domain.ErrInvalidParams)
	}
	if tmpl.Category == domain.CategoryBox {
		if _, err := drop.SealBox(ctx, cfg, tmpl.Tier); err != nil {
			return fmt.Errorf("recipe %q outputs %s but tier %d has no box params: %v | %w",
				name, tmpl.Name, tmpl.Tier, err, domain.ErrInvalidParams)
		}
	}
	return nil
}

// CreateRecipe validates and stores a recipe, returning it with its assigned ID
func (s *service) CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	log := logger.FromContext(ctx)

	if err := s.validate.Struct(recipe); err != nil {
		return nil, fmt.Errorf("recipe %q: %v | %w", recipe.Name, err, domain.ErrInvalidParams)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	for _, c := range append(append([]domain.ItemConstraint{}, recipe.InputConstraints...), recipe.OutputCandidates...) {
		tmpl, err := tx.GetTemplate(ctx, c.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("recipe %q references template %d: %v | %w", recipe.Name, c.TemplateID, err, domain.ErrInvalidParams)
		}
		if c.MinLevel > tmpl.LevelCap() {
			return nil, fmt.Errorf("recipe %q wants %s at level %d, cap is %d | %w",
				recipe.Name, tmpl.Name, c.MinLevel, tmpl.LevelCap(), domain.ErrInvalidParams)
		}
	}
	for _, c := range recipe.OutputCandidates {
		if err := checkOutput(ctx, tx, recipe.Name, c); err != nil {
			return nil, err
		}
	}

	recipe.ID = 0
	id, err := tx.InsertRecipe(ctx, recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	recipe.ID = id
	log.Info("Recipe created", "recipe_id", id, "name", recipe.Name, "inputs", len(recipe.InputConstraints))
	return &recipe, nil
}
