package bootstrap

import (
	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/crafting"
	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/economy"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/rng"
	"github.com/osse101/ItemForge_Go/internal/server"
	"github.com/osse101/ItemForge_Go/internal/trade"
	"github.com/osse101/ItemForge_Go/internal/upgrade"
)

// InitializeServices constructs every engine over the shared store, provider and publisher
func InitializeServices(cfg *config.Config, repos *Repositories, provider rng.Provider, publisher *event.Publisher) server.Services {
	craft := crafting.NewService(repos.Store, provider, publisher)
	cat := catalog.NewService(repos.Store, craft, catalog.CacheConfig{Size: cfg.CacheSize, TTL: cfg.CacheTTL})

	return server.Services{
		Store:    repos.Store,
		Drops:    drop.NewService(repos.Store, provider, publisher),
		Upgrades: upgrade.NewService(repos.Store, provider, publisher),
		Crafting: craft,
		Economy:  economy.NewService(repos.Store, cat, cfg.PriceList, publisher),
		Backpack: backpack.NewService(repos.Store, cat, publisher),
		Catalog:  cat,
		Events:   eventlog.NewService(repos.EventLog),
		Trades:   trade.NewService(repos.Store, publisher, trade.Config{Size: cfg.TradeSessionLimit, TTL: cfg.TradeSessionTTL}),
	}
}
