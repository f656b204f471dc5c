package handler

import (
	"net/http"

	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// TransferRequest names the new owner of an item
type TransferRequest struct {
	To string `json:"to" validate:"required,owner"`
}

// HistoryResponse lists event log entries, newest first
type HistoryResponse struct {
	Events interface{} `json:"events"`
	Count  int         `json:"count"`
}

// HandleGetItem returns one item
// GET /api/v1/items/{id}
func HandleGetItem(svc backpack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		item, err := svc.Item(r.Context(), itemID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandleInventory lists what the caller holds. The owner query parameter looks at
// someone else's inventory.
// GET /api/v1/inventory
func HandleInventory(svc backpack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("owner")
		if owner == "" {
			caller, ok := callerFromRequest(w, r)
			if !ok {
				return
			}
			owner = caller.ID
		}
		inv, err := svc.Inventory(r.Context(), owner)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgOperationFailed, "op", "inventory", "error", err, "owner", owner)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, inv)
	}
}

// HandleTransfer gives an owned item to another owner
// POST /api/v1/items/{id}/transfer
func HandleTransfer(svc backpack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		var req TransferRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Transfer item"); err != nil {
			return
		}
		item, err := svc.Transfer(r.Context(), caller, itemID, req.To)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "transfer", "error", err, "item_id", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandleDiscard drops an owned item to the ground
// POST /api/v1/items/{id}/discard
func HandleDiscard(svc backpack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		item, err := svc.Discard(r.Context(), caller, itemID)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "discard", "error", err, "item_id", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandlePickup claims an item lying on the ground
// POST /api/v1/items/{id}/pickup
func HandlePickup(svc backpack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		item, err := svc.Pickup(r.Context(), caller, itemID)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "pickup", "error", err, "item_id", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandleItemHistory lists every logged event that touched an item
// GET /api/v1/items/{id}/history?limit=N
func HandleItemHistory(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		limit, ok := queryInt(w, r, "limit", eventlog.DefaultHistoryLimit, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		entries, err := svc.ItemHistory(r.Context(), itemID, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, HistoryResponse{Events: entries, Count: len(entries)})
	}
}

// HandleCallerHistory lists the events the caller caused
// GET /api/v1/history?limit=N
func HandleCallerHistory(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		limit, ok := queryInt(w, r, "limit", eventlog.DefaultHistoryLimit, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		entries, err := svc.UserHistory(r.Context(), caller.ID, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, HistoryResponse{Events: entries, Count: len(entries)})
	}
}
