package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written and the handler should return.
//
//	var req CombineRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Combine"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	if err := decodeJSON(r, w, req, actionName); err != nil {
		return err
	}
	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// decodeJSON decodes a JSON body rejecting unknown fields, leaving validation to the caller
func decodeJSON(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		log.Warn(LogMsgDecodeFailed, "action", actionName, "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}
	log.Debug(LogMsgRequestDecoded, "action", actionName)
	return nil
}

// callerFromRequest reads the acting identity from request headers. A missing level
// means level zero. On failure the response has been written and ok is false.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	id := r.Header.Get(HeaderCallerID)
	if id == "" || GetValidator().ValidateVar(id, "owner") != nil {
		respondError(w, http.StatusBadRequest, ErrMsgMissingCallerID)
		return domain.Caller{}, false
	}

	caller := domain.Caller{ID: id}
	if raw := r.Header.Get(HeaderCallerLevel); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 0 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidCallerLevel)
			return domain.Caller{}, false
		}
		caller.Level = level
	}
	return caller, true
}

// pathInt64 parses a positive integer URL parameter
func pathInt64(w http.ResponseWriter, r *http.Request, name, errMsg string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		respondError(w, http.StatusBadRequest, errMsg)
		return 0, false
	}
	return v, true
}

// pathTier parses a non-negative tier URL parameter
func pathTier(w http.ResponseWriter, r *http.Request) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil || v < 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidTier)
		return 0, false
	}
	return v, true
}

// queryInt reads an optional non-negative integer query parameter
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int, errMsg string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondError(w, http.StatusBadRequest, errMsg)
		return 0, false
	}
	return v, true
}

// GetQueryParam retrieves a required query parameter. If ok is false the response
// has already been written.
func GetQueryParam(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, paramName))
		return "", false
	}
	return value, true
}

// decodeOptional behaves like DecodeAndValidateRequest but accepts an empty body
func decodeOptional(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	if r.ContentLength == 0 {
		return nil
	}
	return DecodeAndValidateRequest(r, w, req, actionName)
}
