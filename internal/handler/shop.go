package handler

import (
	"net/http"

	"github.com/osse101/ItemForge_Go/internal/economy"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// BuyRequest buys quantity fresh items of a shop template
type BuyRequest struct {
	TemplateID int `json:"template_id" validate:"required,min=1"`
	Quantity   int `json:"quantity" validate:"required,min=1"`
}

// SellRequest sells one owned item back to the shop
type SellRequest struct {
	ItemID int64 `json:"item_id" validate:"required,min=1"`
}

// HandleBuy purchases items from the shop
// POST /api/v1/shop/buy
func HandleBuy(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		var req BuyRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Buy item"); err != nil {
			return
		}

		result, err := svc.Buy(r.Context(), caller, req.TemplateID, req.Quantity)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "buy", "error", err,
				"template_id", req.TemplateID, "quantity", req.Quantity)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleSell sells an owned item to the shop
// POST /api/v1/shop/sell
func HandleSell(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		var req SellRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Sell item"); err != nil {
			return
		}

		result, err := svc.Sell(r.Context(), caller, req.ItemID)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "sell", "error", err, "item_id", req.ItemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleQuote prices an existing item
// GET /api/v1/shop/quote/{id}
func HandleQuote(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		quote, err := svc.Quote(r.Context(), itemID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, quote)
	}
}

// HandlePriceList returns the multipliers the shop prices with
// GET /api/v1/shop/prices
func HandlePriceList(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, svc.PriceList())
	}
}
