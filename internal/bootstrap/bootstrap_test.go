package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/database/memory"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

const catalogFixture = "../../configs/catalog.json"

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:            "debug",
		LogFormat:           "text",
		LogDir:              filepath.Join(dir, "logs"),
		Environment:         "test",
		StoreBackend:        config.StoreBackendMemory,
		RNGServerSeed:       "bootstrap-test",
		CatalogPath:         catalogFixture,
		PriceList:           domain.DefaultPriceList(),
		CacheSize:           16,
		CacheTTL:            time.Minute,
		EventDeadLetterPath: filepath.Join(dir, "events", "dead.jsonl"),
	}
}

func TestInitializeRepositories_Memory(t *testing.T) {
	repos, err := InitializeRepositories(context.Background(), memoryConfig(t))
	require.NoError(t, err)
	defer repos.Close()

	assert.Nil(t, repos.Pool)
	assert.IsType(t, &memory.Store{}, repos.Store)
	assert.NoError(t, repos.Store.Ping(context.Background()))
}

func TestInitializeRNG(t *testing.T) {
	cfg := memoryConfig(t)

	a, err := InitializeRNG(cfg)
	require.NoError(t, err)
	b, err := InitializeRNG(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Commitment(), b.Commitment(), "same seed, same commitment")

	cfg.RNGServerSeed = ""
	c, err := InitializeRNG(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Commitment(), c.Commitment())
}

func TestInitializeEventSystem_CreatesDeadLetterDir(t *testing.T) {
	cfg := memoryConfig(t)

	events, err := InitializeEventSystem(cfg)
	require.NoError(t, err)
	require.NotNil(t, events.DeadLetter)
	defer events.DeadLetter.Close()

	assert.DirExists(t, filepath.Dir(cfg.EventDeadLetterPath))
	assert.Same(t, events.Bus, events.Publisher.Bus())
}

func TestInitializeEventSystem_NoDeadLetter(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.EventDeadLetterPath = ""

	events, err := InitializeEventSystem(cfg)
	require.NoError(t, err)
	assert.Nil(t, events.DeadLetter)
}

func TestSyncCatalog(t *testing.T) {
	cfg := memoryConfig(t)
	repos, err := InitializeRepositories(context.Background(), cfg)
	require.NoError(t, err)
	chain, err := InitializeRNG(cfg)
	require.NoError(t, err)
	svc := InitializeServices(cfg, repos, chain, nil)

	first, err := SyncCatalog(context.Background(), cfg.CatalogPath, svc.Catalog)
	require.NoError(t, err)
	assert.Positive(t, first.Templates)
	assert.Positive(t, first.RecipesCreated)

	second, err := SyncCatalog(context.Background(), cfg.CatalogPath, svc.Catalog)
	require.NoError(t, err)
	assert.Zero(t, second.RecipesCreated, "recipes are immutable, a resync skips them")
	assert.Equal(t, first.RecipesCreated, second.RecipesSkipped)

	recipes, err := svc.Catalog.Recipes(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, first.RecipesCreated)
}

func TestSyncCatalog_MissingFileIsNotFatal(t *testing.T) {
	result, err := SyncCatalog(context.Background(), filepath.Join(t.TempDir(), "absent.json"), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Templates)
}

func TestSyncCatalog_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"templates":"nope"}`), 0o600))

	_, err := SyncCatalog(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFailedLoadCatalog)
}

func TestRegisterEventHandlers_PersistsAuditTrail(t *testing.T) {
	cfg := memoryConfig(t)
	repos, err := InitializeRepositories(context.Background(), cfg)
	require.NoError(t, err)
	events, err := InitializeEventSystem(cfg)
	require.NoError(t, err)
	defer events.DeadLetter.Close()
	chain, err := InitializeRNG(cfg)
	require.NoError(t, err)
	svc := InitializeServices(cfg, repos, chain, events.Publisher)

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterEventHandlers(EventHandlerDependencies{
		EventBus:        events.Bus,
		EventLogService: svc.Events,
		CatalogService:  svc.Catalog,
		Registerer:      reg,
	}))

	_, err = svc.Catalog.GrantCurrency(context.Background(), "alice", 10)
	require.NoError(t, err)
	events.Publisher.Publish(context.Background(), event.NewShopEvent(event.ItemBought, event.ShopPayloadV1{CallerID: "alice", Items: []int64{7}}))

	history, err := svc.Events.ItemHistory(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(event.ItemBought), history[0].EventType)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "template cache metrics registered")
}

func TestStartBackgroundJobs_RunsCleanupImmediately(t *testing.T) {
	log := memory.NewEventLog()
	old := repository.EventLogEntry{EventType: "item.created", CreatedAt: time.Now().AddDate(0, 0, -30)}
	require.NoError(t, log.LogEvent(context.Background(), old))

	cfg := memoryConfig(t)
	cfg.EventRetentionDays = 7
	cfg.EventCleanupInterval = time.Hour
	svcRepos := &Repositories{Store: memory.NewStore(), EventLog: log}
	svc := InitializeServices(cfg, svcRepos, nil, nil)

	bg := StartBackgroundJobs(svc, cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, bg.Shutdown(ctx))
	}()

	assert.Eventually(t, func() bool {
		entries, err := log.GetEvents(context.Background(), repository.EventLogFilter{})
		return err == nil && len(entries) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStartBackgroundJobs_SweepsGroundItems(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	apple := fixture.Give(t, store, domain.Ground, fixture.Apple, domain.ItemAttributes{})
	kept := fixture.Give(t, store, "alice", fixture.Apple, domain.ItemAttributes{})

	cfg := memoryConfig(t)
	cfg.GroundItemTTL = time.Nanosecond
	cfg.GroundSweepInterval = time.Hour
	svc := InitializeServices(cfg, &Repositories{Store: store, EventLog: memory.NewEventLog()}, nil, nil)

	time.Sleep(time.Millisecond)
	bg := StartBackgroundJobs(svc, cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, bg.Shutdown(ctx))
	}()

	assert.Eventually(t, func() bool {
		_, err := store.GetItem(ctx, apple)
		return errors.Is(err, domain.ErrNotFound)
	}, time.Second, 10*time.Millisecond)
	_, err := store.GetItem(ctx, kept)
	assert.NoError(t, err, "owned items never expire")
}

func TestGracefulShutdown_ToleratesMissingComponents(t *testing.T) {
	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{})
	})
}

func TestInitLogger_WritesBanner(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(memoryConfig(t), &buf)
	assert.Contains(t, buf.String(), LogMsgStartingItemForge)
}

func TestCleanupLogs_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf(LogFileNamePattern, fmt.Sprintf("2026-01-%02d_00-00-00", i+1))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))

	cleanupLogs(dir, 9)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
	assert.NoFileExists(t, filepath.Join(dir, fmt.Sprintf(LogFileNamePattern, "2026-01-01_00-00-00")))
	assert.FileExists(t, filepath.Join(dir, fmt.Sprintf(LogFileNamePattern, "2026-01-12_00-00-00")))
}
