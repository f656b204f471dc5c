package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// ErrorResponse represents an error response. Kind and Detail are only set for domain failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// DataResponse carries a payload alongside an optional message. Error is set when a
// request failed but still produced a result worth reporting.
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Data    interface{} `json:"data"`
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its status and response body
func respondServiceError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	respondJSON(w, status, body)
}

// errorMapping ties a domain sentinel to its HTTP status, user-facing message and kind
type errorMapping struct {
	target  error
	status  int
	message string
	kind    string
}

// errorMappings is checked in order; ErrUnknownTier wraps ErrNotFound and must come first.
var errorMappings = []errorMapping{
	{domain.ErrUnknownTier, http.StatusNotFound, ErrMsgNotFoundError, ErrKindUnknownTier},
	{domain.ErrNotFound, http.StatusNotFound, ErrMsgNotFoundError, ErrKindNotFound},
	{domain.ErrNotOwner, http.StatusForbidden, ErrMsgNotOwnerError, ErrKindNotOwner},
	{domain.ErrInsufficientLevel, http.StatusForbidden, ErrMsgLevelTooLowError, ErrKindInsufficientLevel},
	{domain.ErrStaleItemState, http.StatusConflict, ErrMsgStaleItemError, ErrKindStaleItemState},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired, ErrMsgNotEnoughMoneyError, ErrKindInsufficientFunds},
	{domain.ErrInvariantViolation, http.StatusUnprocessableEntity, ErrMsgInvariantError, ErrKindInvariantViolation},
	{domain.ErrWrongCatalyst, http.StatusUnprocessableEntity, ErrMsgWrongCatalystError, ErrKindWrongCatalyst},
	{domain.ErrNoRecipeMatch, http.StatusUnprocessableEntity, ErrMsgNoRecipeMatchError, ErrKindNoRecipeMatch},
	{domain.ErrNotABox, http.StatusUnprocessableEntity, ErrMsgNotABoxError, ErrKindNotABox},
	{domain.ErrNotBuyable, http.StatusUnprocessableEntity, ErrMsgNotBuyableError, ErrKindNotBuyable},
	{domain.ErrDuplicateSlot, http.StatusBadRequest, ErrMsgDuplicateSlotError, ErrKindDuplicateSlot},
	{domain.ErrInvalidTemplate, http.StatusBadRequest, ErrMsgInvalidTemplateErr, ErrKindInvalidTemplate},
	{domain.ErrInvalidParams, http.StatusBadRequest, ErrMsgInvalidParamsError, ErrKindInvalidParams},
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrMsgInvalidInputError, ErrKindInvalidInput},
}

func classifyError(err error) (errorMapping, bool) {
	if err == nil {
		return errorMapping{}, false
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// statusForError maps domain errors to HTTP status codes and messages users can act on.
// Anything unrecognised is an infrastructure failure and stays opaque.
func statusForError(err error) (int, string) {
	m, ok := classifyError(err)
	if !ok {
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
	return m.status, m.message
}

// errorBody builds the response for a service error. Domain failures carry their kind and
// the wrapped message without the sentinel suffix; infrastructure failures carry neither.
func errorBody(err error) (int, ErrorResponse) {
	m, ok := classifyError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Error: ErrMsgGenericServerError}
	}
	return m.status, ErrorResponse{Error: m.message, Kind: m.kind, Detail: errorDetail(err, m.target)}
}

// errorDetail strips the " | sentinel" suffix the services append when wrapping
func errorDetail(err, target error) string {
	detail := strings.TrimSuffix(err.Error(), " | "+target.Error())
	if detail == target.Error() {
		return ""
	}
	return detail
}
