package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/trade"
)

// OpenTradeRequest names the other party of a new trade
type OpenTradeRequest struct {
	Partner string `json:"partner" validate:"required,owner"`
}

// OfferRequest replaces the caller's side of a trade
type OfferRequest struct {
	ItemIDs []int64 `json:"item_ids" validate:"max=32,unique,dive,min=1"`
	Gold    int64   `json:"gold" validate:"min=0,max=1000000000"`
}

type tradeStep func(ctx context.Context, caller domain.Caller, tradeID string) (*trade.Trade, error)

// HandleOpenTrade starts a trade with another owner
// POST /api/v1/trades
func HandleOpenTrade(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		var req OpenTradeRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Open trade"); err != nil {
			return
		}
		t, err := svc.Open(r.Context(), caller, req.Partner)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "open_trade", "error", err, "partner", req.Partner)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, t)
	}
}

// HandleGetTrade shows a trade to one of its parties
// GET /api/v1/trades/{id}
func HandleGetTrade(svc trade.Service) http.HandlerFunc {
	return handleTradeStep("get_trade", svc.Get)
}

// HandleSetOffer replaces the caller's offer and withdraws both approvals
// PUT /api/v1/trades/{id}/offer
func HandleSetOffer(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		tradeID, ok := pathTradeID(w, r)
		if !ok {
			return
		}
		var req OfferRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set offer"); err != nil {
			return
		}
		t, err := svc.SetOffer(r.Context(), caller, tradeID, trade.Offer{ItemIDs: req.ItemIDs, Gold: req.Gold})
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "set_offer", "error", err, "trade_id", tradeID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

// HandleApproveTrade accepts the current terms; the second approval executes the trade
// POST /api/v1/trades/{id}/approve
func HandleApproveTrade(svc trade.Service) http.HandlerFunc {
	return handleTradeStep("approve_trade", svc.Approve)
}

// HandleCancelTrade closes a trade without moving anything
// POST /api/v1/trades/{id}/cancel
func HandleCancelTrade(svc trade.Service) http.HandlerFunc {
	return handleTradeStep("cancel_trade", svc.Cancel)
}

func handleTradeStep(op string, step tradeStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		tradeID, ok := pathTradeID(w, r)
		if !ok {
			return
		}
		t, err := step(r.Context(), caller, tradeID)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", op, "error", err, "trade_id", tradeID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

// pathTradeID reads the trade id URL parameter
func pathTradeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if GetValidator().ValidateVar(id, "required,uuid") != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidTradeID)
		return "", false
	}
	return id, true
}
