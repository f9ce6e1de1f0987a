package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradeTutor/internal/ports"
)

// errorBody is the JSON error envelope: {status, error, details}.
type errorBody struct {
	Status  int         `json:"status"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details interface{}) {
	writeJSON(w, status, errorBody{Status: status, Error: msg, Details: details})
}

// respondError maps application errors to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var oerr *ports.OracleError
	if errors.As(err, &oerr) {
		writeError(w, oerr.Status, oerr.Message, oerr.Details)
		return
	}

	switch {
	case errors.Is(err, ports.ErrInvalidRequest),
		errors.Is(err, ports.ErrInvalidQuantity),
		errors.Is(err, ports.ErrInsufficientFunds),
		errors.Is(err, ports.ErrInsufficientHoldings),
		errors.Is(err, ports.ErrUnknownAsset),
		errors.Is(err, ports.ErrInvalidSpeed),
		errors.Is(err, ports.ErrUnsupportedFileType),
		errors.Is(err, ports.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ports.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ports.ErrNoActiveScenario),
		errors.Is(err, ports.ErrScenarioActive),
		errors.Is(err, ports.ErrScenarioComplete),
		errors.Is(err, ports.ErrScenarioNotEnded):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ports.ErrOracleUnconfigured):
		writeError(w, http.StatusInternalServerError, "API key not configured. Please set ANTHROPIC_API_KEY.", nil)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}
