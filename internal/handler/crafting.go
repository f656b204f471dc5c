package handler

import (
	"errors"
	"net/http"

	"github.com/osse101/ItemForge_Go/internal/crafting"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// CombineRequest submits items to the chaos machine
type CombineRequest struct {
	ItemIDs   []int64 `json:"item_ids" validate:"required,min=1,max=32,dive,min=1"`
	RecipeID  int     `json:"recipe_id" validate:"min=0"`
	Recipient string  `json:"recipient" validate:"owner"`
	SeedHint  string  `json:"seed_hint" validate:"max=128"`
}

// HandleCombine resolves a submission against the recipe book.
// A submission matching no recipe still consumes its items; the response is 422 and
// carries the result so the caller can see what was lost.
// POST /api/v1/combine
func HandleCombine(svc crafting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		var req CombineRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Combine"); err != nil {
			return
		}

		result, err := svc.Combine(r.Context(), caller, crafting.CombineRequest{
			ItemIDs:    req.ItemIDs,
			RecipeHint: req.RecipeID,
			Recipient:  req.Recipient,
			SeedHint:   req.SeedHint,
		})
		if err != nil {
			log.Warn(LogMsgOperationFailed, "op", "combine", "error", err, "items", req.ItemIDs)
			if result != nil && errors.Is(err, domain.ErrNoRecipeMatch) {
				status, body := errorBody(err)
				respondJSON(w, status, DataResponse{Error: body.Error, Kind: body.Kind, Detail: body.Detail, Data: result})
				return
			}
			respondServiceError(w, err)
			return
		}
		log.Info("Combination resolved", "recipe_id", result.RecipeID, "outcome", result.Outcome)
		respondJSON(w, http.StatusOK, result)
	}
}
