package handler

import (
	"net/http"

	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// DropRequest asks for one roll against a tier's drop table
type DropRequest struct {
	Tier     int    `json:"tier" validate:"min=0"`
	SeedHint string `json:"seed_hint" validate:"max=128"`
}

// SeedRequest carries the optional caller-supplied seed hint
type SeedRequest struct {
	SeedHint string `json:"seed_hint" validate:"max=128"`
}

// DropResponse reports a drop. Nothing is true when the roll produced neither item nor currency.
type DropResponse struct {
	*drop.Result
	Nothing bool `json:"nothing"`
}

// HandleDrop rolls the drop table of a tier for the caller
// POST /api/v1/drops
func HandleDrop(svc drop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		var req DropRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Drop"); err != nil {
			return
		}

		result, err := svc.Drop(r.Context(), caller, req.Tier, req.SeedHint)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgOperationFailed, "op", "drop", "error", err, "tier", req.Tier)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DropResponse{Result: result, Nothing: result.Nothing()})
	}
}

// HandleOpenBox opens a sealed box the caller owns
// POST /api/v1/items/{id}/open
func HandleOpenBox(svc drop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		var req SeedRequest
		if err := decodeOptional(r, w, &req, "Open box"); err != nil {
			return
		}

		result, err := svc.OpenBox(r.Context(), caller, itemID, req.SeedHint)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "open_box", "error", err, "item_id", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DropResponse{Result: result, Nothing: result.Nothing()})
	}
}
