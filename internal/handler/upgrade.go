package handler

import (
	"context"
	"net/http"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/upgrade"
)

// UpgradeRequest names the catalyst consumed by a ritual
type UpgradeRequest struct {
	CatalystID int64  `json:"catalyst_id" validate:"required,min=1"`
	SeedHint   string `json:"seed_hint" validate:"max=128"`
}

type ritualFunc func(ctx context.Context, caller domain.Caller, itemID, catalystID int64, seedHint string) (*upgrade.Result, error)

// HandleUpgradeLevel runs the level ritual
// POST /api/v1/items/{id}/upgrade/level
func HandleUpgradeLevel(svc upgrade.Service) http.HandlerFunc {
	return handleRitual("Upgrade level", svc.UpgradeLevel)
}

// HandleUpgradeAddPoints runs the additional points ritual
// POST /api/v1/items/{id}/upgrade/points
func HandleUpgradeAddPoints(svc upgrade.Service) http.HandlerFunc {
	return handleRitual("Upgrade add points", svc.UpgradeAddPoints)
}

// handleRitual answers 200 for every terminal outcome, including destruction
func handleRitual(opName string, ritual ritualFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		caller, ok := callerFromRequest(w, r)
		if !ok {
			return
		}
		itemID, ok := pathInt64(w, r, "id", ErrMsgInvalidItemID)
		if !ok {
			return
		}
		var req UpgradeRequest
		if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
			return
		}

		result, err := ritual(r.Context(), caller, itemID, req.CatalystID, req.SeedHint)
		if err != nil {
			log.Warn(LogMsgOperationFailed, "op", opName, "error", err, "item_id", itemID, "catalyst_id", req.CatalystID)
			respondServiceError(w, err)
			return
		}
		log.Info(opName+" resolved", "item_id", itemID, "outcome", result.Outcome)
		respondJSON(w, http.StatusOK, result)
	}
}
