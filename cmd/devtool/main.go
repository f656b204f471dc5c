package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

func newRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(&MigrateCommand{})
	registry.Register(&WaitForDBCommand{})
	registry.Register(&HealthCheckCommand{})
	registry.Register(&ValidateCatalogCommand{})
	registry.Register(&CheckEnvCommand{})
	registry.Register(&DeadLetterCommand{})
	return registry
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	registry := newRegistry()
	if err := registry.Dispatch(os.Args[1:]); err != nil {
		PrintError("%v", err)
		if errors.Is(err, errUnknownCommand) {
			registry.PrintHelp(os.Stdout)
		}
		os.Exit(1)
	}
}
