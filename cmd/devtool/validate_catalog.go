package main

import (
	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/config"
)

type ValidateCatalogCommand struct{}

func (c *ValidateCatalogCommand) Name() string {
	return "validate-catalog"
}

func (c *ValidateCatalogCommand) Description() string {
	return "Check a catalog file against the schema and its cross references"
}

func (c *ValidateCatalogCommand) Run(args []string) error {
	path := getEnv("CATALOG_PATH", config.DefaultCatalogPath)
	if len(args) > 0 {
		path = args[0]
	}

	PrintHeader("Validating " + path)

	loader := catalog.NewLoader()
	file, err := loader.Load(path)
	if err != nil {
		return err
	}
	if err := loader.Validate(file); err != nil {
		return err
	}

	PrintSuccess("Catalog %s is valid", file.Version)
	PrintInfo("%d templates, %d drop params, %d box drop params, %d recipes",
		len(file.Templates), len(file.DropParams), len(file.BoxDropParams), len(file.Recipes))
	PrintInfo("sha256 %s", file.Hash())
	return nil
}
