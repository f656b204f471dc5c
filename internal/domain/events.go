package domain

// Event type constants used for event bus subscriptions, the audit log and metrics.
//
// Event types follow the pattern: <entity>.<action> (e.g., "item.created")
const (
	// EventTypeItemCreated is published for every new item record
	EventTypeItemCreated = "item.created"

	// EventTypeItemMutated is published when level, add points or owner change
	EventTypeItemMutated = "item.mutated"

	// EventTypeItemDestroyed is published when an item record is removed
	EventTypeItemDestroyed = "item.destroyed"

	// EventTypeRecipeResolved is published after every chaos combination
	EventTypeRecipeResolved = "recipe.resolved"

	// EventTypeUpgradeAttempted is published for every upgrade ritual
	EventTypeUpgradeAttempted = "item.upgrade_attempted"

	// EventTypeItemDropped is published when a drop or box opening resolves
	EventTypeItemDropped = "item.dropped"

	// EventTypeItemBought is published when items are bought from the shop
	EventTypeItemBought = "item.bought"

	// EventTypeItemSold is published when an item is sold to the shop
	EventTypeItemSold = "item.sold"

	// EventTypeTradeExecuted is published when both parties of a trade approved and the swap committed
	EventTypeTradeExecuted = "trade.executed"
)
