// Package postgres is the PostgreSQL repository.Store. Item rows are claimed with
// SELECT ... FOR UPDATE NOWAIT so an operation touching an item another transaction
// holds fails fast with domain.ErrStaleItemState instead of queueing.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Store implements repository.Store on a pgx pool
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ repository.Store = (*Store)(nil)

// BeginTx implements repository.Store
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{tx: pgTx}, nil
}

// Ping implements repository.Store
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetItem implements repository.Store
func (s *Store) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id = $1`, id))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("item %d", id))
	}
	return item, nil
}

// ListItemsByOwner implements repository.Store
func (s *Store) ListItemsByOwner(ctx context.Context, owner string) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE owner = $1 ORDER BY item_id`, owner)
	if err != nil {
		return nil, translate(err, "list items")
	}
	defer rows.Close()

	out := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, translate(err, "scan item")
		}
		out = append(out, *item)
	}
	return out, translate(rows.Err(), "list items")
}

// ListGroundItems implements repository.Store
func (s *Store) ListGroundItems(ctx context.Context, before time.Time, limit int) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items
		WHERE owner = '' AND ground_since < $1 ORDER BY item_id LIMIT $2`, before, limit)
	if err != nil {
		return nil, translate(err, "list ground items")
	}
	defer rows.Close()

	out := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, translate(err, "scan item")
		}
		out = append(out, *item)
	}
	return out, translate(rows.Err(), "list ground items")
}

// GetBalance implements repository.Store; owners without a wallet hold zero
func (s *Store) GetBalance(ctx context.Context, owner string) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE((SELECT balance FROM wallets WHERE owner = $1), 0)`, owner).Scan(&balance)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("wallet %q", owner))
	}
	return balance, nil
}

func (s *Store) GetTemplate(ctx context.Context, id int) (*domain.Template, error) {
	return getTemplate(ctx, s.pool, id)
}

func (s *Store) ListTemplates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	return listTemplates(ctx, s.pool, category, tier)
}

func (s *Store) GetDropParams(ctx context.Context, tier int) (*domain.DropParams, error) {
	return getDropParams(ctx, s.pool, tier)
}

func (s *Store) GetBoxDropParams(ctx context.Context, tier int) (*domain.BoxDropParams, error) {
	return getBoxDropParams(ctx, s.pool, tier)
}

func (s *Store) GetRecipe(ctx context.Context, id int) (*domain.Recipe, error) {
	return getRecipe(ctx, s.pool, id)
}

func (s *Store) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return listRecipes(ctx, s.pool)
}

func (s *Store) GetUpgradeRules(ctx context.Context) (*domain.UpgradeRules, error) {
	return getUpgradeRules(ctx, s.pool)
}
