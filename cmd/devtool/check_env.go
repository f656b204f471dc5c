package main

import (
	"github.com/osse101/ItemForge_Go/internal/config"
)

type CheckEnvCommand struct{}

func (c *CheckEnvCommand) Name() string {
	return "check-env"
}

func (c *CheckEnvCommand) Description() string {
	return "Verify required environment variables and report risky values"
}

func (c *CheckEnvCommand) Run(args []string) error {
	PrintHeader("Environment")

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		PrintWarning("%s", w)
	}
	PrintSuccess("Required variables present")
	return nil
}
