package repository

import (
	"context"
	"time"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// Items is item row access inside a transaction
type Items interface {
	// InsertItem stores a new item, assigns its ID and Version, and returns the ID.
	// IDs are never reused, even after destruction.
	InsertItem(ctx context.Context, item *domain.Item) (int64, error)

	// GetItemForUpdate loads and locks an item without waiting.
	// Fails with domain.ErrNotFound or, when another operation holds the item, domain.ErrStaleItemState.
	GetItemForUpdate(ctx context.Context, id int64) (*domain.Item, error)

	// UpdateItem writes the mutable fields when the stored version equals expectedVersion,
	// then bumps item.Version. A version mismatch fails with domain.ErrStaleItemState.
	UpdateItem(ctx context.Context, item *domain.Item, expectedVersion int64) error

	// DeleteItem removes an item. Fails with domain.ErrNotFound when already gone.
	DeleteItem(ctx context.Context, id int64) error
}

// Wallets is currency balance access inside a transaction
type Wallets interface {
	// GetBalanceForUpdate locks and returns the owner's balance, zero when no wallet exists yet
	GetBalanceForUpdate(ctx context.Context, owner string) (int64, error)

	// AdjustBalance adds delta to the balance and returns the new value.
	// A result below zero fails with domain.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, owner string, delta int64) (int64, error)
}

// ConfigReader reads templates, odds tables, recipes and upgrade rules
type ConfigReader interface {
	GetTemplate(ctx context.Context, id int) (*domain.Template, error)
	ListTemplates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error)
	GetDropParams(ctx context.Context, tier int) (*domain.DropParams, error)
	GetBoxDropParams(ctx context.Context, tier int) (*domain.BoxDropParams, error)
	GetRecipe(ctx context.Context, id int) (*domain.Recipe, error)
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetUpgradeRules(ctx context.Context) (*domain.UpgradeRules, error)
}

// TemplateSource resolves templates for read-only paths.
// catalog.Service implements it over its cache.
type TemplateSource interface {
	Template(ctx context.Context, id int) (*domain.Template, error)
}

// ConfigWriter replaces administrative configuration
type ConfigWriter interface {
	UpsertTemplate(ctx context.Context, t domain.Template) error

	// PutDropParams replaces the tier's record and returns the BlockCreated stamp assigned to it
	PutDropParams(ctx context.Context, p domain.DropParams) (int64, error)
	PutBoxDropParams(ctx context.Context, p domain.BoxDropParams) (int64, error)

	// InsertRecipe stores a recipe and returns its ID, which follows creation order
	InsertRecipe(ctx context.Context, r domain.Recipe) (int, error)
	PutUpgradeRules(ctx context.Context, r domain.UpgradeRules) error
}

// Tx defines the interface for transactional operations.
// Every economy operation runs inside exactly one Tx.
type Tx interface {
	Items
	Wallets
	ConfigReader
	ConfigWriter
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens transactions and serves read-only queries outside of them
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	ConfigReader
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ListItemsByOwner(ctx context.Context, owner string) ([]domain.Item, error)
	// ListGroundItems returns up to limit items that have lain on the ground since before the cutoff, oldest ID first
	ListGroundItems(ctx context.Context, before time.Time, limit int) ([]domain.Item, error)
	GetBalance(ctx context.Context, owner string) (int64, error)
	Ping(ctx context.Context) error
}
