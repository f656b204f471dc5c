package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/crafting"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/trade"
	"github.com/osse101/ItemForge_Go/internal/upgrade"
)

type MockPinger struct{ mock.Mock }

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockDropService struct{ mock.Mock }

func (m *MockDropService) Drop(ctx context.Context, caller domain.Caller, tier int, seedHint string) (*drop.Result, error) {
	args := m.Called(ctx, caller, tier, seedHint)
	res, _ := args.Get(0).(*drop.Result)
	return res, args.Error(1)
}

func (m *MockDropService) OpenBox(ctx context.Context, caller domain.Caller, itemID int64, seedHint string) (*drop.Result, error) {
	args := m.Called(ctx, caller, itemID, seedHint)
	res, _ := args.Get(0).(*drop.Result)
	return res, args.Error(1)
}

type MockUpgradeService struct{ mock.Mock }

func (m *MockUpgradeService) UpgradeLevel(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*upgrade.Result, error) {
	args := m.Called(ctx, caller, itemID, catalystID, seedHint)
	res, _ := args.Get(0).(*upgrade.Result)
	return res, args.Error(1)
}

func (m *MockUpgradeService) UpgradeAddPoints(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*upgrade.Result, error) {
	args := m.Called(ctx, caller, itemID, catalystID, seedHint)
	res, _ := args.Get(0).(*upgrade.Result)
	return res, args.Error(1)
}

type MockCraftingService struct{ mock.Mock }

func (m *MockCraftingService) Combine(ctx context.Context, caller domain.Caller, req crafting.CombineRequest) (*crafting.CombineResult, error) {
	args := m.Called(ctx, caller, req)
	res, _ := args.Get(0).(*crafting.CombineResult)
	return res, args.Error(1)
}

func (m *MockCraftingService) CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	args := m.Called(ctx, recipe)
	res, _ := args.Get(0).(*domain.Recipe)
	return res, args.Error(1)
}

type MockBackpackService struct{ mock.Mock }

func (m *MockBackpackService) Inventory(ctx context.Context, owner string) (*backpack.Inventory, error) {
	args := m.Called(ctx, owner)
	res, _ := args.Get(0).(*backpack.Inventory)
	return res, args.Error(1)
}

func (m *MockBackpackService) Item(ctx context.Context, itemID int64) (*backpack.ItemView, error) {
	args := m.Called(ctx, itemID)
	res, _ := args.Get(0).(*backpack.ItemView)
	return res, args.Error(1)
}

func (m *MockBackpackService) Transfer(ctx context.Context, caller domain.Caller, itemID int64, to string) (*domain.Item, error) {
	args := m.Called(ctx, caller, itemID, to)
	res, _ := args.Get(0).(*domain.Item)
	return res, args.Error(1)
}

func (m *MockBackpackService) Discard(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error) {
	args := m.Called(ctx, caller, itemID)
	res, _ := args.Get(0).(*domain.Item)
	return res, args.Error(1)
}

func (m *MockBackpackService) Pickup(ctx context.Context, caller domain.Caller, itemID int64) (*domain.Item, error) {
	args := m.Called(ctx, caller, itemID)
	res, _ := args.Get(0).(*domain.Item)
	return res, args.Error(1)
}

func (m *MockBackpackService) ExpireGround(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type MockCatalogService struct{ mock.Mock }

func (m *MockCatalogService) Template(ctx context.Context, id int) (*domain.Template, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*domain.Template)
	return res, args.Error(1)
}

func (m *MockCatalogService) Templates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	args := m.Called(ctx, category, tier)
	res, _ := args.Get(0).([]domain.Template)
	return res, args.Error(1)
}

func (m *MockCatalogService) UpsertTemplate(ctx context.Context, tmpl domain.Template) error {
	return m.Called(ctx, tmpl).Error(0)
}

func (m *MockCatalogService) SetDropParams(ctx context.Context, tier int, p domain.DropParams) (*domain.DropParams, error) {
	args := m.Called(ctx, tier, p)
	res, _ := args.Get(0).(*domain.DropParams)
	return res, args.Error(1)
}

func (m *MockCatalogService) SetBoxDropParams(ctx context.Context, tier int, p domain.BoxDropParams) (*domain.BoxDropParams, error) {
	args := m.Called(ctx, tier, p)
	res, _ := args.Get(0).(*domain.BoxDropParams)
	return res, args.Error(1)
}

func (m *MockCatalogService) SetUpgradeRules(ctx context.Context, rules domain.UpgradeRules) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockCatalogService) CreateRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	args := m.Called(ctx, recipe)
	res, _ := args.Get(0).(*domain.Recipe)
	return res, args.Error(1)
}

func (m *MockCatalogService) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]domain.Recipe)
	return res, args.Error(1)
}

func (m *MockCatalogService) GrantCurrency(ctx context.Context, owner string, amount int64) (int64, error) {
	args := m.Called(ctx, owner, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) CacheStats() catalog.CacheStats {
	return m.Called().Get(0).(catalog.CacheStats)
}

type MockEventLogService struct{ mock.Mock }

func (m *MockEventLogService) Subscribe(bus event.Bus) error {
	return m.Called(bus).Error(0)
}

func (m *MockEventLogService) Events(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).([]repository.EventLogEntry)
	return res, args.Error(1)
}

func (m *MockEventLogService) ItemHistory(ctx context.Context, itemID int64, limit int) ([]repository.EventLogEntry, error) {
	args := m.Called(ctx, itemID, limit)
	res, _ := args.Get(0).([]repository.EventLogEntry)
	return res, args.Error(1)
}

func (m *MockEventLogService) UserHistory(ctx context.Context, userID string, limit int) ([]repository.EventLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	res, _ := args.Get(0).([]repository.EventLogEntry)
	return res, args.Error(1)
}

func (m *MockEventLogService) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

type MockTradeService struct{ mock.Mock }

func (m *MockTradeService) Open(ctx context.Context, caller domain.Caller, partner string) (*trade.Trade, error) {
	args := m.Called(ctx, caller, partner)
	res, _ := args.Get(0).(*trade.Trade)
	return res, args.Error(1)
}

func (m *MockTradeService) Get(ctx context.Context, caller domain.Caller, tradeID string) (*trade.Trade, error) {
	args := m.Called(ctx, caller, tradeID)
	res, _ := args.Get(0).(*trade.Trade)
	return res, args.Error(1)
}

func (m *MockTradeService) SetOffer(ctx context.Context, caller domain.Caller, tradeID string, offer trade.Offer) (*trade.Trade, error) {
	args := m.Called(ctx, caller, tradeID, offer)
	res, _ := args.Get(0).(*trade.Trade)
	return res, args.Error(1)
}

func (m *MockTradeService) Approve(ctx context.Context, caller domain.Caller, tradeID string) (*trade.Trade, error) {
	args := m.Called(ctx, caller, tradeID)
	res, _ := args.Get(0).(*trade.Trade)
	return res, args.Error(1)
}

func (m *MockTradeService) Cancel(ctx context.Context, caller domain.Caller, tradeID string) (*trade.Trade, error) {
	args := m.Called(ctx, caller, tradeID)
	res, _ := args.Get(0).(*trade.Trade)
	return res, args.Error(1)
}
