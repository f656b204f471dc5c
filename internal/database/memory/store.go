// Package memory is a process-local repository.Store used for development and tests.
// Transactions buffer their writes and apply them atomically on commit; item rows are
// claimed with non-blocking locks so concurrent operations on one item fail fast.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osse101/ItemForge_Go/internal/concurrency"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Store is the in-memory implementation of repository.Store
type Store struct {
	mu         sync.RWMutex
	items      map[int64]domain.Item
	templates  map[int]domain.Template
	dropParams map[int]domain.DropParams
	boxParams  map[int]domain.BoxDropParams
	recipes    map[int]domain.Recipe
	rules      *domain.UpgradeRules
	wallets    map[string]int64

	nextItemID   int64
	nextRecipeID int
	revision     int64

	locks *concurrency.LockManager
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		items:      make(map[int64]domain.Item),
		templates:  make(map[int]domain.Template),
		dropParams: make(map[int]domain.DropParams),
		boxParams:  make(map[int]domain.BoxDropParams),
		recipes:    make(map[int]domain.Recipe),
		wallets:    make(map[string]int64),
		locks:      concurrency.NewLockManager(),
		now:        time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

// BeginTx implements repository.Store
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{
		s:          s,
		held:       make(map[string]bool),
		items:      make(map[int64]*domain.Item),
		wallets:    make(map[string]int64),
		templates:  make(map[int]domain.Template),
		dropParams: make(map[int]domain.DropParams),
		boxParams:  make(map[int]domain.BoxDropParams),
	}, nil
}

// Ping implements repository.Store
func (s *Store) Ping(context.Context) error { return nil }

// GetItem implements repository.Store
func (s *Store) GetItem(_ context.Context, id int64) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d | %w", id, domain.ErrNotFound)
	}
	return item.Clone(), nil
}

// ListItemsByOwner implements repository.Store
func (s *Store) ListItemsByOwner(_ context.Context, owner string) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Item{}
	for _, item := range s.items {
		if item.Owner == owner {
			out = append(out, *item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListGroundItems implements repository.Store
func (s *Store) ListGroundItems(_ context.Context, before time.Time, limit int) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Item{}
	for _, item := range s.items {
		if item.Owner == domain.Ground && item.GroundSince != nil && item.GroundSince.Before(before) {
			out = append(out, *item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetBalance implements repository.Store
func (s *Store) GetBalance(_ context.Context, owner string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets[owner], nil
}

// GetTemplate implements repository.ConfigReader
func (s *Store) GetTemplate(_ context.Context, id int) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %d | %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

// ListTemplates implements repository.ConfigReader
func (s *Store) ListTemplates(_ context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterTemplates(s.templates, nil, category, tier), nil
}

// GetDropParams implements repository.ConfigReader
func (s *Store) GetDropParams(_ context.Context, tier int) (*domain.DropParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.dropParams[tier]
	if !ok {
		return nil, fmt.Errorf("drop params for tier %d | %w", tier, domain.ErrUnknownTier)
	}
	return &p, nil
}

// GetBoxDropParams implements repository.ConfigReader
func (s *Store) GetBoxDropParams(_ context.Context, tier int) (*domain.BoxDropParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.boxParams[tier]
	if !ok {
		return nil, fmt.Errorf("box drop params for tier %d | %w", tier, domain.ErrUnknownTier)
	}
	return &p, nil
}

// GetRecipe implements repository.ConfigReader
func (s *Store) GetRecipe(_ context.Context, id int) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d | %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

// ListRecipes implements repository.ConfigReader, ordered by creation
func (s *Store) ListRecipes(context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecipes(s.recipes, nil), nil
}

// GetUpgradeRules implements repository.ConfigReader; defaults apply until rules are stored
func (s *Store) GetUpgradeRules(context.Context) (*domain.UpgradeRules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rules == nil {
		r := domain.DefaultUpgradeRules()
		return &r, nil
	}
	r := *s.rules
	return &r, nil
}

func filterTemplates(committed, pending map[int]domain.Template, category domain.Category, tier int) []domain.Template {
	merged := make(map[int]domain.Template, len(committed)+len(pending))
	for id, t := range committed {
		merged[id] = t
	}
	for id, t := range pending {
		merged[id] = t
	}
	out := []domain.Template{}
	for _, t := range merged {
		if t.Category == category && t.Tier == tier {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedRecipes(committed map[int]domain.Recipe, pending []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(committed)+len(pending))
	for _, r := range committed {
		out = append(out, r)
	}
	out = append(out, pending...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
