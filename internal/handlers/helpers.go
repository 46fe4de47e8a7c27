// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/huddlehq/huddle/internal/services/core"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeCoreError maps a typed conversation-layer error onto an HTTP status.
func writeCoreError(w http.ResponseWriter, err error) {
	var ce *core.CoreError
	if !errors.As(err, &ce) {
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch ce.Type {
	case core.ErrTypeNotFound:
		status = http.StatusNotFound
	case core.ErrTypeUnauthorized:
		status = http.StatusUnauthorized
	case core.ErrTypeForbidden:
		status = http.StatusForbidden
	case core.ErrTypeConflict:
		status = http.StatusConflict
	case core.ErrTypeInvalidArgument:
		status = http.StatusBadRequest
	case core.ErrTypeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeError(w, ce.Message, status)
}

// pathID extracts a numeric path variable from the request.
func pathID(r *http.Request, name string) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[name], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}

// queryUint parses an optional unsigned integer query parameter.
func queryUint(r *http.Request, name string) uint {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}
