package memory

import (
	"context"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/concurrency"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

type tx struct {
	s    *Store
	held map[string]bool
	done bool

	// nil entries mark deletions
	items      map[int64]*domain.Item
	wallets    map[string]int64
	templates  map[int]domain.Template
	dropParams map[int]domain.DropParams
	boxParams  map[int]domain.BoxDropParams
	recipes    []domain.Recipe
	rules      *domain.UpgradeRules
}

func (t *tx) checkOpen() error {
	if t.done {
		return repository.ErrTxClosed
	}
	return nil
}

// claim takes the item lock without waiting
func (t *tx) claim(id int64) error {
	key := concurrency.ItemKey(id)
	if t.held[key] {
		return nil
	}
	if !t.s.locks.TryLock(key) {
		return fmt.Errorf("item %d is held by another operation | %w", id, domain.ErrStaleItemState)
	}
	t.held[key] = true
	return nil
}

func (t *tx) claimWallet(owner string) {
	key := concurrency.WalletKey(owner)
	if t.held[key] {
		return
	}
	t.s.locks.GetLock(key).Lock()
	t.held[key] = true
}

func (t *tx) release() {
	for key := range t.held {
		t.s.locks.Unlock(key)
	}
	t.held = map[string]bool{}
}

// current returns the item as this transaction sees it
func (t *tx) current(id int64) (*domain.Item, bool) {
	if item, ok := t.items[id]; ok {
		return item, item != nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	item, ok := t.s.items[id]
	if !ok {
		return nil, false
	}
	return item.Clone(), true
}

func (t *tx) InsertItem(_ context.Context, item *domain.Item) (int64, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	t.s.mu.Lock()
	t.s.nextItemID++
	id := t.s.nextItemID
	t.s.mu.Unlock()

	if err := t.claim(id); err != nil {
		return 0, err
	}
	item.ID = id
	item.Version = 1
	if item.CreatedAt.IsZero() {
		item.CreatedAt = t.s.now()
	}
	t.stampGround(item, nil)
	t.items[id] = item.Clone()
	return id, nil
}

func (t *tx) GetItemForUpdate(_ context.Context, id int64) (*domain.Item, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	if err := t.claim(id); err != nil {
		return nil, err
	}
	item, ok := t.current(id)
	if !ok {
		return nil, fmt.Errorf("item %d | %w", id, domain.ErrNotFound)
	}
	return item.Clone(), nil
}

func (t *tx) UpdateItem(_ context.Context, item *domain.Item, expectedVersion int64) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.claim(item.ID); err != nil {
		return err
	}
	cur, ok := t.current(item.ID)
	if !ok {
		return fmt.Errorf("item %d | %w", item.ID, domain.ErrNotFound)
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("item %d at version %d, expected %d | %w", item.ID, cur.Version, expectedVersion, domain.ErrStaleItemState)
	}
	item.Version = expectedVersion + 1
	t.stampGround(item, cur)
	t.items[item.ID] = item.Clone()
	return nil
}

// stampGround keeps GroundSince set for exactly as long as the item lies on the ground
func (t *tx) stampGround(item, prev *domain.Item) {
	switch {
	case item.Owner != domain.Ground:
		item.GroundSince = nil
	case prev != nil && prev.Owner == domain.Ground && prev.GroundSince != nil:
		item.GroundSince = prev.GroundSince
	default:
		now := t.s.now()
		item.GroundSince = &now
	}
}

func (t *tx) DeleteItem(_ context.Context, id int64) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.claim(id); err != nil {
		return err
	}
	if _, ok := t.current(id); !ok {
		return fmt.Errorf("item %d | %w", id, domain.ErrNotFound)
	}
	t.items[id] = nil
	return nil
}

func (t *tx) GetBalanceForUpdate(_ context.Context, owner string) (int64, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	t.claimWallet(owner)
	return t.balance(owner), nil
}

func (t *tx) balance(owner string) int64 {
	if v, ok := t.wallets[owner]; ok {
		return v
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.wallets[owner]
}

func (t *tx) AdjustBalance(_ context.Context, owner string, delta int64) (int64, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	t.claimWallet(owner)
	next := t.balance(owner) + delta
	if next < 0 {
		return 0, fmt.Errorf("wallet %q would reach %d | %w", owner, next, domain.ErrInsufficientFunds)
	}
	t.wallets[owner] = next
	return next, nil
}

func (t *tx) GetTemplate(ctx context.Context, id int) (*domain.Template, error) {
	if tmpl, ok := t.templates[id]; ok {
		return &tmpl, nil
	}
	return t.s.GetTemplate(ctx, id)
}

func (t *tx) ListTemplates(_ context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return filterTemplates(t.s.templates, t.templates, category, tier), nil
}

func (t *tx) GetDropParams(ctx context.Context, tier int) (*domain.DropParams, error) {
	if p, ok := t.dropParams[tier]; ok {
		return &p, nil
	}
	return t.s.GetDropParams(ctx, tier)
}

func (t *tx) GetBoxDropParams(ctx context.Context, tier int) (*domain.BoxDropParams, error) {
	if p, ok := t.boxParams[tier]; ok {
		return &p, nil
	}
	return t.s.GetBoxDropParams(ctx, tier)
}

func (t *tx) GetRecipe(ctx context.Context, id int) (*domain.Recipe, error) {
	for _, r := range t.recipes {
		if r.ID == id {
			return &r, nil
		}
	}
	return t.s.GetRecipe(ctx, id)
}

func (t *tx) ListRecipes(context.Context) ([]domain.Recipe, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return sortedRecipes(t.s.recipes, t.recipes), nil
}

func (t *tx) GetUpgradeRules(ctx context.Context) (*domain.UpgradeRules, error) {
	if t.rules != nil {
		r := *t.rules
		return &r, nil
	}
	return t.s.GetUpgradeRules(ctx)
}

func (t *tx) UpsertTemplate(_ context.Context, tmpl domain.Template) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.templates[tmpl.ID] = tmpl
	return nil
}

func (t *tx) nextRevision() int64 {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.revision++
	return t.s.revision
}

func (t *tx) PutDropParams(_ context.Context, p domain.DropParams) (int64, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	p.BlockCreated = t.nextRevision()
	t.dropParams[p.Tier] = p
	return p.BlockCreated, nil
}

func (t *tx) PutBoxDropParams(_ context.Context, p domain.BoxDropParams) (int64, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	p.BlockCreated = t.nextRevision()
	t.boxParams[p.Tier] = p
	return p.BlockCreated, nil
}

func (t *tx) InsertRecipe(_ context.Context, r domain.Recipe) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	t.s.mu.Lock()
	t.s.nextRecipeID++
	r.ID = t.s.nextRecipeID
	t.s.mu.Unlock()
	t.recipes = append(t.recipes, r)
	return r.ID, nil
}

func (t *tx) PutUpgradeRules(_ context.Context, r domain.UpgradeRules) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.rules = &r
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.done = true
	defer t.release()

	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range t.items {
		if item == nil {
			delete(s.items, id)
			continue
		}
		s.items[id] = *item
	}
	for owner, bal := range t.wallets {
		s.wallets[owner] = bal
	}
	for id, tmpl := range t.templates {
		s.templates[id] = tmpl
	}
	for tier, p := range t.dropParams {
		s.dropParams[tier] = p
	}
	for tier, p := range t.boxParams {
		s.boxParams[tier] = p
	}
	for _, r := range t.recipes {
		s.recipes[r.ID] = r
	}
	if t.rules != nil {
		r := *t.rules
		s.rules = &r
	}
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.done = true
	t.release()
	return nil
}
