package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// GrantRequest credits currency to a wallet
type GrantRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1,max=1000000000"`
}

// GrantResponse reports the wallet after a grant
type GrantResponse struct {
	Owner   string `json:"owner"`
	Balance int64  `json:"balance"`
}

// CleanupRequest removes logged events older than RetentionDays
type CleanupRequest struct {
	RetentionDays int `json:"retention_days" validate:"required,min=1"`
}

// CleanupResponse reports how many events were removed
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// AdminHandler serves configuration and operator endpoints
type AdminHandler struct {
	catalog catalog.Service
	events  eventlog.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogSvc catalog.Service, events eventlog.Service) *AdminHandler {
	return &AdminHandler{catalog: catalogSvc, events: events}
}

// HandleSetDropParams replaces the drop table of a tier
// PUT /api/v1/admin/drop-params/{tier}
func (h *AdminHandler) HandleSetDropParams(w http.ResponseWriter, r *http.Request) {
	tier, ok := pathTier(w, r)
	if !ok {
		return
	}
	var p domain.DropParams
	if err := decodeJSON(r, w, &p, "Set drop params"); err != nil {
		return
	}
	stored, err := h.catalog.SetDropParams(r.Context(), tier, p)
	if err != nil {
		logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "set_drop_params", "error", err, "tier", tier)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

// HandleSetBoxDropParams replaces the contents table of a box tier
// PUT /api/v1/admin/box-drop-params/{tier}
func (h *AdminHandler) HandleSetBoxDropParams(w http.ResponseWriter, r *http.Request) {
	tier, ok := pathTier(w, r)
	if !ok {
		return
	}
	var p domain.BoxDropParams
	if err := decodeJSON(r, w, &p, "Set box drop params"); err != nil {
		return
	}
	stored, err := h.catalog.SetBoxDropParams(r.Context(), tier, p)
	if err != nil {
		logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "set_box_drop_params", "error", err, "tier", tier)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

// HandleGetTemplate returns one template as the catalog cache currently serves it
// GET /api/v1/admin/templates/{id}
func (h *AdminHandler) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", ErrMsgInvalidTemplateID)
	if !ok {
		return
	}
	tmpl, err := h.catalog.Template(r.Context(), int(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// HandleUpsertTemplate creates or replaces a template; the path id wins over the body
// PUT /api/v1/admin/templates/{id}
func (h *AdminHandler) HandleUpsertTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", ErrMsgInvalidTemplateID)
	if !ok {
		return
	}
	var tmpl domain.Template
	if err := decodeJSON(r, w, &tmpl, "Upsert template"); err != nil {
		return
	}
	tmpl.ID = int(id)
	if err := h.catalog.UpsertTemplate(r.Context(), tmpl); err != nil {
		logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "upsert_template", "error", err, "template_id", id)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// HandleCreateRecipe appends a recipe to the recipe book
// POST /api/v1/admin/recipes
func (h *AdminHandler) HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var recipe domain.Recipe
	if err := decodeJSON(r, w, &recipe, "Create recipe"); err != nil {
		return
	}
	created, err := h.catalog.CreateRecipe(r.Context(), recipe)
	if err != nil {
		logger.FromContext(r.Context()).Warn(LogMsgOperationFailed, "op", "create_recipe", "error", err, "name", recipe.Name)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// HandleListRecipes returns every recipe in creation order
// GET /api/v1/admin/recipes
func (h *AdminHandler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.catalog.Recipes(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

// HandleSetUpgradeRules replaces the ritual rules
// PUT /api/v1/admin/upgrade-rules
func (h *AdminHandler) HandleSetUpgradeRules(w http.ResponseWriter, r *http.Request) {
	var rules domain.UpgradeRules
	if err := decodeJSON(r, w, &rules, "Set upgrade rules"); err != nil {
		return
	}
	if err := h.catalog.SetUpgradeRules(r.Context(), rules); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

// HandleGrantCurrency credits a wallet
// POST /api/v1/admin/wallets/{owner}/grant
func (h *AdminHandler) HandleGrantCurrency(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if GetValidator().ValidateVar(owner, "required,owner") != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidInputError)
		return
	}
	var req GrantRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Grant currency"); err != nil {
		return
	}
	balance, err := h.catalog.GrantCurrency(r.Context(), owner, req.Amount)
	if err != nil {
		logger.FromContext(r.Context()).Error(LogMsgOperationFailed, "op", "grant", "error", err, "owner", owner)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, GrantResponse{Owner: owner, Balance: balance})
}

// HandleGetCacheStats returns template cache statistics
// GET /api/v1/admin/cache/stats
func (h *AdminHandler) HandleGetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.CacheStats())
}

// HandleQueryEvents searches the event log
// GET /api/v1/admin/events?actor=&item_id=&event_type=&since=&until=&limit=
func (h *AdminHandler) HandleQueryEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter repository.EventLogFilter

	if v := q.Get("actor"); v != "" {
		filter.Actor = &v
	}
	if v := q.Get("event_type"); v != "" {
		filter.EventType = &v
	}
	if v := q.Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidItemID)
			return
		}
		filter.ItemID = &id
	}
	for name, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidInputError)
			return
		}
		*dst = &ts
	}
	limit, ok := queryInt(w, r, "limit", eventlog.DefaultHistoryLimit, ErrMsgInvalidLimit)
	if !ok {
		return
	}
	filter.Limit = limit

	entries, err := h.events.Events(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{Events: entries, Count: len(entries)})
}

// HandleCleanupEvents prunes the event log
// POST /api/v1/admin/events/cleanup
func (h *AdminHandler) HandleCleanupEvents(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Cleanup events"); err != nil {
		return
	}
	deleted, err := h.events.CleanupOldEvents(r.Context(), req.RetentionDays)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CleanupResponse{Deleted: deleted})
}
