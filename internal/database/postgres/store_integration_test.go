package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/database"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()
	if !testing.Short() {
		terminate = setupContainer(context.Background())
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

func setupContainer(ctx context.Context) func() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return func() {}
	}
	terminate := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		return terminate
	}
	pool, err := database.NewPool(ctx, database.PoolConfig{URL: connStr, MaxConns: 10, MaxIdle: time.Minute, MaxLife: 5 * time.Minute})
	if err != nil {
		fmt.Printf("WARNING: Failed to connect: %v\n", err)
		return terminate
	}
	if err := database.Migrate(ctx, pool); err != nil {
		fmt.Printf("WARNING: Failed to migrate: %v\n", err)
		pool.Close()
		return terminate
	}
	testPool = pool
	return terminate
}

var seedOnce sync.Once

// newTestStore returns a store over the shared container, seeded with the fixture catalog
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testPool == nil {
		t.Skip("Skipping integration test: database not available")
	}

	s := NewStore(testPool)
	seedOnce.Do(func() {
		ctx := context.Background()
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		for _, tmpl := range fixture.Templates() {
			require.NoError(t, tx.UpsertTemplate(ctx, tmpl))
		}
		_, err = tx.PutDropParams(ctx, fixture.Tier0Params())
		require.NoError(t, err)
		_, err = tx.PutBoxDropParams(ctx, fixture.Tier1BoxParams())
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
	})
	return s
}

func give(t *testing.T, s *Store, owner string, templateID int, attrs domain.ItemAttributes) int64 {
	t.Helper()
	ctx := context.Background()
	tmpl, err := s.GetTemplate(ctx, templateID)
	require.NoError(t, err)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	id, err := tx.InsertItem(ctx, &domain.Item{
		TemplateID: templateID, Category: tmpl.Category, Level: attrs.Level,
		AdditionalDamage: attrs.AdditionalDamage, Luck: attrs.Luck, Excellent: attrs.Excellent,
		Box: attrs.Box, Owner: owner,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return id
}

func TestStore_ConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tmpl, err := s.GetTemplate(ctx, fixture.JewelOfSoul)
	require.NoError(t, err)
	assert.Equal(t, domain.CatalystGreater, tmpl.Catalyst)
	assert.Equal(t, 50, tmpl.RequiredLevel)

	weapons, err := s.ListTemplates(ctx, domain.CategoryWeapon, 3)
	require.NoError(t, err)
	require.Len(t, weapons, 3)
	assert.Equal(t, fixture.DragonAxe, weapons[0].ID)

	p, err := s.GetDropParams(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, fixture.Tier0Params().BoxDropRate, p.BoxDropRate)
	assert.Positive(t, p.BlockCreated)

	_, err = s.GetDropParams(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	box, err := s.GetBoxDropParams(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, box.LuckDropRate)

	rules, err := s.GetUpgradeRules(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, rules.SuccessRates)
}

func TestStore_RevisionStampsIncrease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stamps := make([]int64, 2)
	for i := range stamps {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		p := fixture.Tier0Params()
		p.Tier = 40
		stamps[i], err = tx.PutDropParams(ctx, p)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
	}
	assert.Greater(t, stamps[1], stamps[0])

	stored, err := s.GetDropParams(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, stamps[1], stored.BlockCreated)
}

func TestStore_RecipesFollowCreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	r := domain.Recipe{
		Name:             "pg recipe",
		InputConstraints: []domain.ItemConstraint{{TemplateID: fixture.Apple}},
		SuccessRate:      100,
		OutputCandidates: []domain.ItemConstraint{{TemplateID: fixture.JewelOfBless}},
	}
	first, err := tx.InsertRecipe(ctx, r)
	require.NoError(t, err)
	second, err := tx.InsertRecipe(ctx, r)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Greater(t, second, first)

	got, err := s.GetRecipe(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, got.ID)
	assert.Equal(t, fixture.Apple, got.InputConstraints[0].TemplateID)
}

func TestStore_ItemLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sealed := &domain.SealedBox{Tier: 1, Params: fixture.Tier1BoxParams(), BlockCreated: 3}
	boxID := give(t, s, "pg-alice", fixture.BoxOfKundun, domain.ItemAttributes{Box: sealed})
	box, err := s.GetItem(ctx, boxID)
	require.NoError(t, err)
	require.NotNil(t, box.Box)
	assert.Equal(t, 50, box.Box.Params.LuckDropRate)
	assert.Equal(t, int64(1), box.Version)

	swordID := give(t, s, "pg-alice", fixture.ShortSword, domain.ItemAttributes{Level: 3, Luck: true})

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	item, err := tx.GetItemForUpdate(ctx, swordID)
	require.NoError(t, err)
	item.Level = 4
	require.NoError(t, tx.UpdateItem(ctx, item, item.Version))
	assert.Equal(t, int64(2), item.Version)
	require.NoError(t, tx.DeleteItem(ctx, boxID))
	require.NoError(t, tx.Commit(ctx))

	updated, err := s.GetItem(ctx, swordID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Level)
	assert.True(t, updated.Luck)

	_, err = s.GetItem(ctx, boxID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, err := s.ListItemsByOwner(ctx, "pg-alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, swordID, items[0].ID)
}

func TestStore_StaleVersionRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := give(t, s, "pg-bob", fixture.ShortSword, domain.ItemAttributes{})

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)

	item, err := tx.GetItemForUpdate(ctx, id)
	require.NoError(t, err)
	item.Level = 1
	err = tx.UpdateItem(ctx, item, item.Version+5)
	assert.ErrorIs(t, err, domain.ErrStaleItemState)
}

func TestStore_HeldItemFailsFast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := give(t, s, "pg-carol", fixture.ShortSword, domain.ItemAttributes{})

	holder, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, holder)
	_, err = holder.GetItemForUpdate(ctx, id)
	require.NoError(t, err)

	other, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, other)

	start := time.Now()
	_, err = other.GetItemForUpdate(ctx, id)
	assert.ErrorIs(t, err, domain.ErrStaleItemState)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStore_Wallets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	balance, err := s.GetBalance(ctx, "pg-nobody")
	require.NoError(t, err)
	assert.Zero(t, balance)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	locked, err := tx.GetBalanceForUpdate(ctx, "pg-dave")
	require.NoError(t, err)
	assert.Zero(t, locked)
	balance, err = tx.AdjustBalance(ctx, "pg-dave", 750)
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)
	require.NoError(t, tx.Commit(ctx))

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.AdjustBalance(ctx, "pg-dave", -1000)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	repository.SafeRollback(ctx, tx)

	balance, err = s.GetBalance(ctx, "pg-dave")
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)
}

func TestStore_PickupRaceHasOneWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	custody := backpack.NewService(s, catalog.NewService(s, nil, catalog.DefaultCacheConfig()), nil)
	id := give(t, s, domain.Ground, fixture.Apple, domain.ItemAttributes{})

	const racers = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := custody.Pickup(ctx, domain.Caller{ID: fmt.Sprintf("pg-racer-%d", n)}, id)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrStaleItemState)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestEventLog_Queries(t *testing.T) {
	newTestStore(t)
	ctx := context.Background()
	log := NewEventLogRepository(testPool)

	user := "pg-events"
	require.NoError(t, log.LogEvent(ctx, repository.EventLogEntry{
		EventType: domain.EventTypeItemCreated, Actor: &user, ItemIDs: []int64{9001},
		Payload: map[string]interface{}{"item_id": float64(9001)},
	}))
	require.NoError(t, log.LogEvent(ctx, repository.EventLogEntry{
		EventType: domain.EventTypeItemMutated, Actor: &user, ItemIDs: []int64{9001, 9002},
		Payload:  map[string]interface{}{"item_id": float64(9001)},
		Metadata: map[string]interface{}{"source": "test"},
	}))

	itemID := int64(9002)
	byItem, err := log.GetEvents(ctx, repository.EventLogFilter{ItemID: &itemID})
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, domain.EventTypeItemMutated, byItem[0].EventType)
	assert.Equal(t, "test", byItem[0].Metadata["source"])

	byUser, err := log.GetEvents(ctx, repository.EventLogFilter{Actor: &user, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Greater(t, byUser[0].ID, byUser[1].ID)

	removed, err := log.CleanupOldEvents(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
