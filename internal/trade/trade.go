// Package trade implements two-party item and currency swaps. Both parties place an
// offer, both approve, and the exchange commits in a single transaction.
package trade

import (
	"slices"
	"time"
)

// Status of a trade session
type Status string

const (
	StatusOpen      Status = "open"
	StatusExecuting Status = "executing"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// Offer is what one party puts on the table
type Offer struct {
	ItemIDs []int64 `json:"item_ids" validate:"max=32,unique,dive,min=1"`
	Gold    int64   `json:"gold" validate:"min=0,max=1000000000"`
}

// Side is one party of a trade
type Side struct {
	Owner    string `json:"owner"`
	Offer    Offer  `json:"offer"`
	Approved bool   `json:"approved"`
}

// Trade is a negotiation between an initiator and a partner
type Trade struct {
	ID        string    `json:"id"`
	Initiator Side      `json:"initiator"`
	Partner   Side      `json:"partner"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// side returns the caller's side of the trade, nil when the caller is not a party
func (t *Trade) side(owner string) *Side {
	switch owner {
	case t.Initiator.Owner:
		return &t.Initiator
	case t.Partner.Owner:
		return &t.Partner
	}
	return nil
}

func (t *Trade) clone() *Trade {
	c := *t
	c.Initiator.Offer.ItemIDs = slices.Clone(t.Initiator.Offer.ItemIDs)
	c.Partner.Offer.ItemIDs = slices.Clone(t.Partner.Offer.ItemIDs)
	return &c
}

func (t *Trade) resetApprovals() {
	t.Initiator.Approved = false
	t.Partner.Approved = false
}
