package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Event types emitted by the item economy
const (
	ItemCreated      Type = domain.EventTypeItemCreated
	ItemMutated      Type = domain.EventTypeItemMutated
	ItemDestroyed    Type = domain.EventTypeItemDestroyed
	RecipeResolved   Type = domain.EventTypeRecipeResolved
	UpgradeAttempted Type = domain.EventTypeUpgradeAttempted
	ItemDropped      Type = domain.EventTypeItemDropped
	ItemBought       Type = domain.EventTypeItemBought
	ItemSold         Type = domain.EventTypeItemSold
	TradeExecuted    Type = domain.EventTypeTradeExecuted
)

// AllTypes lists every event type the economy emits
var AllTypes = []Type{
	ItemCreated, ItemMutated, ItemDestroyed, RecipeResolved,
	UpgradeAttempted, ItemDropped, ItemBought, ItemSold, TradeExecuted,
}

// ItemRefs is implemented by payloads that concern specific items
type ItemRefs interface {
	ItemIDs() []int64
}

// Actor is implemented by payloads that were caused by a caller
type Actor interface {
	ActorID() string
}

// ItemState is the mutable part of an item, captured before and after a change
type ItemState struct {
	Level             int    `json:"level"`
	AdditionalDamage  int    `json:"additional_damage"`
	AdditionalDefense int    `json:"additional_defense"`
	Owner             string `json:"owner"`
}

// StateOf captures the mutable state of an item
func StateOf(item *domain.Item) ItemState {
	return ItemState{
		Level:             item.Level,
		AdditionalDamage:  item.AdditionalDamage,
		AdditionalDefense: item.AdditionalDefense,
		Owner:             item.Owner,
	}
}

// ItemCreatedPayloadV1 is the typed payload for item creation
type ItemCreatedPayloadV1 struct {
	ItemID     int64                 `json:"item_id"`
	TemplateID int                   `json:"template_id"`
	Category   domain.Category       `json:"category"`
	Owner      string                `json:"owner"`
	Attrs      domain.ItemAttributes `json:"initial_attrs"`
}

func (p ItemCreatedPayloadV1) ItemIDs() []int64 { return []int64{p.ItemID} }
func (p ItemCreatedPayloadV1) ActorID() string  { return p.Owner }

// ItemMutatedPayloadV1 is the typed payload for item mutation.
// CallerID is empty when the prior owner made the change.
type ItemMutatedPayloadV1 struct {
	ItemID   int64     `json:"item_id"`
	CallerID string    `json:"caller_id,omitempty"`
	Before   ItemState `json:"before"`
	After    ItemState `json:"after"`
}

func (p ItemMutatedPayloadV1) ItemIDs() []int64 { return []int64{p.ItemID} }

func (p ItemMutatedPayloadV1) ActorID() string {
	if p.CallerID != "" {
		return p.CallerID
	}
	return p.Before.Owner
}

// ItemDestroyedPayloadV1 is the typed payload for item destruction
type ItemDestroyedPayloadV1 struct {
	ItemID     int64  `json:"item_id"`
	TemplateID int    `json:"template_id"`
	Owner      string `json:"owner"`
}

func (p ItemDestroyedPayloadV1) ItemIDs() []int64 { return []int64{p.ItemID} }
func (p ItemDestroyedPayloadV1) ActorID() string  { return p.Owner }

// RecipeResolvedPayloadV1 is the typed payload for chaos combination results.
// RecipeID is zero when nothing matched.
type RecipeResolvedPayloadV1 struct {
	RecipeID int     `json:"recipe_id"`
	CallerID string  `json:"caller_id"`
	InputIDs []int64 `json:"input_ids"`
	OutputID *int64  `json:"output_id,omitempty"`
	Success  bool    `json:"success"`
}

func (p RecipeResolvedPayloadV1) ItemIDs() []int64 {
	ids := append([]int64{}, p.InputIDs...)
	if p.OutputID != nil {
		ids = append(ids, *p.OutputID)
	}
	return ids
}
func (p RecipeResolvedPayloadV1) ActorID() string { return p.CallerID }

// UpgradeAttemptedPayloadV1 records one upgrade ritual
type UpgradeAttemptedPayloadV1 struct {
	ItemID     int64     `json:"item_id"`
	CatalystID int64     `json:"catalyst_id"`
	CallerID   string    `json:"caller_id"`
	Ritual     string    `json:"ritual"`
	Before     ItemState `json:"before"`
	Outcome    string    `json:"outcome"`
	After      ItemState `json:"after"`
}

func (p UpgradeAttemptedPayloadV1) ItemIDs() []int64 { return []int64{p.ItemID, p.CatalystID} }
func (p UpgradeAttemptedPayloadV1) ActorID() string  { return p.CallerID }

// ItemDroppedPayloadV1 records a drop or box opening. BoxID is set for openings.
type ItemDroppedPayloadV1 struct {
	CallerID string          `json:"caller_id"`
	Tier     int             `json:"tier"`
	Category domain.Category `json:"category,omitempty"`
	ItemID   *int64          `json:"item_id,omitempty"`
	Currency int64           `json:"currency,omitempty"`
	BoxID    *int64          `json:"box_id,omitempty"`
}

func (p ItemDroppedPayloadV1) ItemIDs() []int64 {
	var ids []int64
	if p.BoxID != nil {
		ids = append(ids, *p.BoxID)
	}
	if p.ItemID != nil {
		ids = append(ids, *p.ItemID)
	}
	return ids
}
func (p ItemDroppedPayloadV1) ActorID() string { return p.CallerID }

// ShopPayloadV1 records a purchase or sale
type ShopPayloadV1 struct {
	CallerID   string  `json:"caller_id"`
	TemplateID int     `json:"template_id"`
	Items      []int64 `json:"item_ids"`
	Amount     int64   `json:"amount"`
}

func (p ShopPayloadV1) ItemIDs() []int64 { return p.Items }
func (p ShopPayloadV1) ActorID() string  { return p.CallerID }

// TradeSidePayloadV1 is what one party handed over in a trade
type TradeSidePayloadV1 struct {
	Owner string  `json:"owner"`
	Items []int64 `json:"item_ids"`
	Gold  int64   `json:"gold"`
}

// TradeExecutedPayloadV1 records a committed two-party trade. Initiator opened the trade.
type TradeExecutedPayloadV1 struct {
	TradeID   string             `json:"trade_id"`
	Initiator TradeSidePayloadV1 `json:"initiator"`
	Partner   TradeSidePayloadV1 `json:"partner"`
}

func (p TradeExecutedPayloadV1) ItemIDs() []int64 {
	ids := append([]int64{}, p.Initiator.Items...)
	return append(ids, p.Partner.Items...)
}
func (p TradeExecutedPayloadV1) ActorID() string { return p.Initiator.Owner }

func newEvent(t Type, payload interface{}) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: payload,
		Metadata: map[string]interface{}{
			"timestamp": time.Now().Unix(),
		},
	}
}

// NewItemCreatedEvent creates an item.created event
func NewItemCreatedEvent(item *domain.Item) Event {
	return newEvent(ItemCreated, ItemCreatedPayloadV1{
		ItemID:     item.ID,
		TemplateID: item.TemplateID,
		Category:   item.Category,
		Owner:      item.Owner,
		Attrs:      item.Attributes(),
	})
}

// NewItemMutatedEvent creates an item.mutated event attributed to callerID
func NewItemMutatedEvent(id int64, callerID string, before, after ItemState) Event {
	return newEvent(ItemMutated, ItemMutatedPayloadV1{ItemID: id, CallerID: callerID, Before: before, After: after})
}

// NewItemDestroyedEvent creates an item.destroyed event
func NewItemDestroyedEvent(item *domain.Item) Event {
	return newEvent(ItemDestroyed, ItemDestroyedPayloadV1{
		ItemID:     item.ID,
		TemplateID: item.TemplateID,
		Owner:      item.Owner,
	})
}

// NewRecipeResolvedEvent creates a recipe.resolved event
func NewRecipeResolvedEvent(recipeID int, callerID string, inputs []int64, output *int64, success bool) Event {
	return newEvent(RecipeResolved, RecipeResolvedPayloadV1{
		RecipeID: recipeID,
		CallerID: callerID,
		InputIDs: inputs,
		OutputID: output,
		Success:  success,
	})
}

// NewUpgradeAttemptedEvent creates an item.upgrade_attempted event
func NewUpgradeAttemptedEvent(p UpgradeAttemptedPayloadV1) Event {
	return newEvent(UpgradeAttempted, p)
}

// NewItemDroppedEvent creates an item.dropped event
func NewItemDroppedEvent(p ItemDroppedPayloadV1) Event {
	return newEvent(ItemDropped, p)
}

// NewShopEvent creates an item.bought or item.sold event
func NewShopEvent(t Type, p ShopPayloadV1) Event {
	return newEvent(t, p)
}

// NewTradeExecutedEvent creates a trade.executed event
func NewTradeExecutedEvent(p TradeExecutedPayloadV1) Event {
	return newEvent(TradeExecuted, p)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every handler for the event type in subscription order.
// A failing handler does not stop the others; their errors are joined.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %s: %w", ErrMsgHandlersFailed, event.Type, errors.Join(errs...))
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
