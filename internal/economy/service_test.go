package economy

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/database/memory"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

var alice = domain.Caller{ID: "alice", Level: 10}

func newService(store *memory.Store) (Service, *event.MemoryBus) {
	bus := event.NewMemoryBus()
	templates := catalog.NewService(store, nil, catalog.DefaultCacheConfig())
	return NewService(store, templates, domain.DefaultPriceList(), event.NewPublisher(bus, nil)), bus
}

func TestPrice(t *testing.T) {
	list := domain.DefaultPriceList()
	sword := domain.Template{ID: 1, Category: domain.CategoryWeapon, Tier: 0}
	chaos := domain.Template{ID: 6, Category: domain.CategoryWeapon, Tier: 2}
	jewel := domain.Template{ID: 2, Category: domain.CategoryJewel}
	custom := domain.Template{ID: 9, Category: domain.CategoryMisc, BasePrice: 70}

	tests := []struct {
		name string
		tmpl domain.Template
		item domain.Item
		buy  int64
		sell int64
	}{
		{"fresh weapon", sword, domain.Item{Category: domain.CategoryWeapon}, 1000, 333},
		{"jewel", jewel, domain.Item{Category: domain.CategoryJewel}, 5000, 1666},
		{"template override", custom, domain.Item{Category: domain.CategoryMisc}, 70, 23},
		{"rarity compounds per tier", chaos, domain.Item{Category: domain.CategoryWeapon}, 2250, 750},
		{
			"every multiplier",
			chaos,
			domain.Item{Category: domain.CategoryWeapon, Level: 5, AdditionalDamage: 6, AdditionalDefense: 4, Luck: true, Excellent: domain.ExcMaxLife},
			16875, 5625,
		},
		{"level only", sword, domain.Item{Category: domain.CategoryWeapon, Level: 5}, 2000, 666},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy, err := Price(&list, &tt.item, &tt.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tt.buy, buy)
			sell, err := SellPrice(&list, &tt.item, &tt.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tt.sell, sell)
		})
	}
}

func TestPrice_RejectsValuesBeyondInt64(t *testing.T) {
	list := domain.DefaultPriceList()
	tmpl := domain.Template{ID: 40, Category: domain.CategoryWeapon, Tier: 120}
	item := domain.Item{Category: domain.CategoryWeapon}

	_, err := Price(&list, &item, &tmpl)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = SellPrice(&list, &item, &tmpl)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tmpl.Tier = domain.MaxTier
	tmpl.BasePrice = domain.MaxBasePrice
	_, err = Price(&list, &item, &tmpl)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "1.5^50 times a billion is still too much")

	list.RarityMultiplierPct = 10
	price, err := Price(&list, &item, &tmpl)
	require.NoError(t, err)
	assert.Positive(t, price)
}

func TestBuySell_RoundTripAlwaysLoses(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(store)
	rich := domain.Caller{ID: "rich", Level: 99}
	fixture.Fund(t, store, rich.ID, 1_000_000)

	for _, tmpl := range fixture.Templates() {
		if !tmpl.InShop {
			continue
		}
		t.Run(tmpl.Name, func(t *testing.T) {
			before, _ := store.GetBalance(ctx, rich.ID)
			bought, err := svc.Buy(ctx, rich, tmpl.ID, 1)
			require.NoError(t, err)
			require.Len(t, bought.Items, 1)

			sold, err := svc.Sell(ctx, rich, bought.Items[0].ID)
			require.NoError(t, err)
			assert.Less(t, sold.Credited, bought.Cost)

			after, _ := store.GetBalance(ctx, rich.ID)
			assert.Less(t, after, before)
		})
	}
}

func TestBuy(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, bus := newService(store)
	fixture.Fund(t, store, alice.ID, 1000)

	var bought []event.ShopPayloadV1
	bus.Subscribe(event.ItemBought, func(_ context.Context, e event.Event) error {
		bought = append(bought, e.Payload.(event.ShopPayloadV1))
		return nil
	})

	res, err := svc.Buy(ctx, alice, fixture.Apple, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Cost)
	assert.Equal(t, int64(400), res.Balance)
	require.Len(t, res.Items, 3)
	for _, item := range res.Items {
		assert.Equal(t, fixture.Apple, item.TemplateID)
		assert.Equal(t, alice.ID, item.Owner)
		assert.Zero(t, item.Level)
		assert.Zero(t, item.AddPoints())
	}
	require.Len(t, bought, 1)
	assert.Len(t, bought[0].Items, 3)
	assert.Equal(t, int64(600), bought[0].Amount)
}

func TestBuy_Rejections(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(store)
	fixture.Fund(t, store, alice.ID, 1500)

	tests := []struct {
		name     string
		template int
		qty      int
		want     error
	}{
		{"zero quantity", fixture.Apple, 0, domain.ErrInvalidInput},
		{"quantity above cap", fixture.Apple, MaxBuyQuantity + 1, domain.ErrInvalidInput},
		{"unknown template", 999, 1, domain.ErrInvalidTemplate},
		{"not in shop", fixture.LongSword, 1, domain.ErrNotBuyable},
		{"level gated", fixture.JewelOfSoul, 1, domain.ErrInsufficientLevel},
		{"cannot afford", fixture.ShortSword, 2, domain.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Buy(ctx, alice, tt.template, tt.qty)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	bal, _ := store.GetBalance(ctx, alice.ID)
	assert.Equal(t, int64(1500), bal, "rejected purchases charge nothing")
	items, _ := store.ListItemsByOwner(ctx, alice.ID)
	assert.Empty(t, items)
}

func TestBuy_OverflowingPricesChargeNothing(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(store)
	fixture.Fund(t, store, alice.ID, 1000)

	// rows written straight to the store skip catalog validation
	fixture.Put(t, store, func(ctx context.Context, tx repository.ConfigWriter) error {
		if err := tx.UpsertTemplate(ctx, domain.Template{ID: 40, Name: "relic", Category: domain.CategoryWeapon, Tier: 120, InShop: true}); err != nil {
			return err
		}
		return tx.UpsertTemplate(ctx, domain.Template{ID: 41, Name: "crown", Category: domain.CategoryMisc, InShop: true, BasePrice: 5_000_000_000_000_000_000})
	})

	_, err := svc.Buy(ctx, alice, 40, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Buy(ctx, alice, 41, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unit fits but the total does not")

	bal, _ := store.GetBalance(ctx, alice.ID)
	assert.Equal(t, int64(1000), bal)
	items, _ := store.ListItemsByOwner(ctx, alice.ID)
	assert.Empty(t, items)
}

func TestSell_RejectsBalanceOverflow(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(store)
	fixture.Fund(t, store, alice.ID, math.MaxInt64-10)

	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{})
	_, err := svc.Sell(ctx, alice, sword)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.GetItem(ctx, sword)
	assert.NoError(t, err, "the item survives a rejected sale")
	bal, _ := store.GetBalance(ctx, alice.ID)
	assert.Equal(t, int64(math.MaxInt64-10), bal)
}

func TestSell(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(store)

	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 5})
	res, err := svc.Sell(ctx, alice, sword)
	require.NoError(t, err)
	assert.Equal(t, int64(666), res.Credited)
	assert.Equal(t, int64(666), res.Balance)

	_, err = store.GetItem(ctx, sword)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Sell(ctx, alice, sword)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	foreign := fixture.Give(t, store, "bob", fixture.ShortSword, domain.ItemAttributes{})
	_, err = svc.Sell(ctx, alice, foreign)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = store.GetItem(ctx, foreign)
	assert.NoError(t, err)
}

func TestQuote(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	templates := catalog.NewService(store, nil, catalog.DefaultCacheConfig())
	svc := NewService(store, templates, domain.DefaultPriceList(), nil)

	id := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 5, Luck: true})
	q, err := svc.Quote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), q.BuyPrice)
	assert.Equal(t, int64(833), q.SellPrice)
	assert.Equal(t, "Short Sword +5 +Luck", q.Name)

	_, err = svc.Quote(ctx, id)
	require.NoError(t, err)
	stats := templates.CacheStats()
	assert.Equal(t, uint64(1), stats.Misses, "the template is read from the store once")
	assert.Equal(t, uint64(1), stats.Hits)

	_, err = svc.Quote(ctx, 31337)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
