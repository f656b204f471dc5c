package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgNotFound           = "not found"
	ErrMsgInvalidTemplate    = "invalid template"
	ErrMsgNotOwner           = "caller does not own item"
	ErrMsgInvariantViolation = "item invariant violation"
	ErrMsgWrongCatalyst      = "wrong catalyst"
	ErrMsgNoRecipeMatch      = "no recipe matches submission"
	ErrMsgDuplicateSlot      = "duplicate item in submission"
	ErrMsgNotABox            = "item is not a box"
	ErrMsgInsufficientFunds  = "insufficient funds"
	ErrMsgInsufficientLevel  = "insufficient level"
	ErrMsgNotBuyable         = "is not buyable"
	ErrMsgStaleItemState     = "stale item state"
	ErrMsgInvalidParams      = "invalid params"
	ErrMsgUnknownTier        = "unknown tier"
	ErrMsgInvalidInput       = "invalid input"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// Wrap these with fmt.Errorf("context | %w", domain.ErrXxx) so callers can use errors.Is.
var (
	ErrNotFound           = errors.New(ErrMsgNotFound)
	ErrInvalidTemplate    = errors.New(ErrMsgInvalidTemplate)
	ErrNotOwner           = errors.New(ErrMsgNotOwner)
	ErrInvariantViolation = errors.New(ErrMsgInvariantViolation)
	ErrWrongCatalyst      = errors.New(ErrMsgWrongCatalyst)
	ErrNoRecipeMatch      = errors.New(ErrMsgNoRecipeMatch)
	ErrDuplicateSlot      = errors.New(ErrMsgDuplicateSlot)
	ErrNotABox            = errors.New(ErrMsgNotABox)
	ErrInsufficientFunds  = errors.New(ErrMsgInsufficientFunds)
	ErrInsufficientLevel  = errors.New(ErrMsgInsufficientLevel)
	ErrNotBuyable         = errors.New(ErrMsgNotBuyable)
	ErrStaleItemState     = errors.New(ErrMsgStaleItemState)
	ErrInvalidParams      = errors.New(ErrMsgInvalidParams)
	ErrInvalidInput       = errors.New(ErrMsgInvalidInput)

	// ErrUnknownTier is a NotFound for drop tiers without configured params
	ErrUnknownTier = fmt.Errorf("%s | %w", ErrMsgUnknownTier, ErrNotFound)
)
