package main

import (
	"fmt"
	"sort"

	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/event"
)

type DeadLetterCommand struct{}

func (c *DeadLetterCommand) Name() string {
	return "deadletter"
}

func (c *DeadLetterCommand) Description() string {
	return "Summarize undelivered events in the dead-letter file"
}

func (c *DeadLetterCommand) Run(args []string) error {
	path := getEnv("EVENT_DEADLETTER_PATH", config.DefaultDeadLetterPath)
	if len(args) > 0 {
		path = args[0]
	}

	PrintHeader("Dead letters in " + path)

	entries, err := event.ReadDeadLetters(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		PrintSuccess("No undelivered events")
		return nil
	}

	byType := make(map[event.Type]int)
	for _, e := range entries {
		byType[e.EventType]++
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	PrintWarning("%d undelivered events", len(entries))
	for _, t := range types {
		fmt.Printf("  %-28s %d\n", t, byType[event.Type(t)])
	}

	last := entries[len(entries)-1]
	PrintInfo("latest: %s at %s actor=%q items=%v error=%q",
		last.EventType, last.Timestamp.Format("2006-01-02T15:04:05Z07:00"), last.Actor, last.ItemIDs, last.LastError)
	return nil
}
