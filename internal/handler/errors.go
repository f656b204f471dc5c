package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidItemID         = "Invalid item ID"
	ErrMsgInvalidTier           = "Invalid tier"
	ErrMsgInvalidTemplateID     = "Invalid template ID"
	ErrMsgInvalidTradeID        = "Invalid trade ID"
	ErrMsgInvalidLimit          = "Invalid limit parameter"
	ErrMsgInvalidRetention      = "Invalid retention_days"
	ErrMsgMissingCallerID       = "Missing X-Caller-ID header"
	ErrMsgInvalidCallerLevel    = "Invalid X-Caller-Level header"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
)

// User-facing messages derived from domain errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgNotFoundError       = "Resource not found"
	ErrMsgNotOwnerError       = "You don't own that item"
	ErrMsgLevelTooLowError    = "Your level is too low for that item"
	ErrMsgStaleItemError      = "Item is busy or changed, try again"
	ErrMsgInvariantError      = "That would break an item rule"
	ErrMsgWrongCatalystError  = "That catalyst cannot be used here"
	ErrMsgNoRecipeMatchError  = "No recipe matches those items"
	ErrMsgDuplicateSlotError  = "The same item was submitted twice"
	ErrMsgNotABoxError        = "That item is not a box"
	ErrMsgNotBuyableError     = "That item is not sold in the shop"
	ErrMsgInvalidTemplateErr  = "Unknown or invalid item template"
	ErrMsgInvalidParamsError  = "Invalid drop parameters"
	ErrMsgNotEnoughMoneyError = "Not enough money"
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
)

// Stable error kinds reported alongside domain failures. Clients branch on these,
// never on the human readable message.
const (
	ErrKindNotFound           = "not_found"
	ErrKindUnknownTier        = "unknown_tier"
	ErrKindNotOwner           = "not_owner"
	ErrKindInsufficientLevel  = "insufficient_level"
	ErrKindStaleItemState     = "stale_item_state"
	ErrKindInsufficientFunds  = "insufficient_funds"
	ErrKindInvariantViolation = "invariant_violation"
	ErrKindWrongCatalyst      = "wrong_catalyst"
	ErrKindNoRecipeMatch      = "no_recipe_match"
	ErrKindNotABox            = "not_a_box"
	ErrKindNotBuyable         = "not_buyable"
	ErrKindDuplicateSlot      = "duplicate_slot"
	ErrKindInvalidTemplate    = "invalid_template"
	ErrKindInvalidParams      = "invalid_params"
	ErrKindInvalidInput       = "invalid_input"
)

// Log messages
const (
	LogMsgDecodeFailed    = "Failed to decode request"
	LogMsgRequestDecoded  = "Request decoded"
	LogMsgOperationFailed = "Operation failed"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
)

// Request header names carrying caller identity
const (
	HeaderCallerID    = "X-Caller-ID"
	HeaderCallerLevel = "X-Caller-Level"
)
