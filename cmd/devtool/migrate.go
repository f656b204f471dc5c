package main

import (
	"context"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/database"
)

type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Apply embedded migrations (up) or print the schema version (status)"
}

func (c *MigrateCommand) Run(args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}
	if action != "up" && action != "status" {
		return fmt.Errorf("unknown migrate action %q (want up or status)", action)
	}

	PrintHeader(fmt.Sprintf("Migrations (%s)", action))

	ctx, cancel := context.WithTimeout(context.Background(), envDuration("MIGRATE_TIMEOUT", defaultMigrateTimeout))
	defer cancel()

	pool, err := database.NewPool(ctx, database.PoolConfig{URL: databaseURL(), MaxConns: 1})
	if err != nil {
		return err
	}
	defer pool.Close()

	if action == "up" {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	version, err := database.Version(ctx, pool)
	if err != nil {
		return err
	}
	PrintSuccess("Schema at version %d", version)
	return nil
}
