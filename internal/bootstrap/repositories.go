package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/database"
	"github.com/osse101/ItemForge_Go/internal/database/memory"
	"github.com/osse101/ItemForge_Go/internal/database/postgres"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/rng"
)

// Repositories holds the storage implementations used by the application.
// Pool is nil for the in-memory backend.
type Repositories struct {
	Store    repository.Store
	EventLog repository.EventLog
	Pool     *pgxpool.Pool
}

// Close releases the database pool when one was opened
func (r *Repositories) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// InitializeRepositories opens the configured backend. For postgres it creates
// the pool and applies pending migrations before handing out the store.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if !cfg.UsesPostgres() {
		slog.Warn(LogMsgMemoryStoreWarning)
		return &Repositories{
			Store:    memory.NewStore(),
			EventLog: memory.NewEventLog(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, StoreConnectTimeout)
	defer cancel()

	pool, err := database.NewPool(ctx, database.PoolConfig{
		URL:      cfg.GetDBConnString(),
		MaxConns: cfg.DBMaxConns,
		MaxIdle:  cfg.DBMaxConnIdleTime,
		MaxLife:  cfg.DBMaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectStore, err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
	}
	slog.Info(LogMsgMigrationsApplied)

	slog.Info(LogMsgStoreReady, "backend", cfg.StoreBackend, "max_conns", cfg.DBMaxConns)
	return &Repositories{
		Store:    postgres.NewStore(pool),
		EventLog: postgres.NewEventLogRepository(pool),
		Pool:     pool,
	}, nil
}

// InitializeRNG builds the hash-chain provider. Without a configured seed an
// ephemeral one is drawn from crypto/rand; the commitment is logged either way.
func InitializeRNG(cfg *config.Config) (*rng.Chain, error) {
	seed := cfg.RNGServerSeed
	if seed == "" {
		buf := make([]byte, RNGGeneratedSeedByteCount)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedGenerateSeed, err)
		}
		seed = hex.EncodeToString(buf)
		slog.Warn(LogMsgRNGSeedGenerated)
	}

	chain := rng.NewChain(seed)
	slog.Info(LogMsgRNGCommitment, "commitment", chain.Commitment())
	return chain, nil
}
