package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"amaa/domain/core"
	apperrors "amaa/internal/errors"
)

// writeJSON writes a JSON response
func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("[UI] encode response: %v", err)
	}
}

// guidanceResponse carries a non-error message the screen shows instead of
// data, e.g. "no features selected".
type guidanceResponse struct {
	Guidance string `json:"guidance"`
}

// errorResponse carries a structured error for the client.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeComputeError maps domain failures onto the degradation contract:
// empty selections become guidance messages, unusable files keep the prior
// table, everything else is a plain client or server error.
func (a *App) writeComputeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrEmptySelection) {
		a.writeJSON(w, http.StatusOK, guidanceResponse{Guidance: err.Error()})
		return
	}

	var (
		status int
		appErr *apperrors.AppError
	)
	switch {
	case errors.Is(err, core.ErrUnusableFile):
		status = http.StatusUnprocessableEntity
		appErr = apperrors.ParseError("could not load data", err)
	case core.IsInvalidInputError(err):
		status = http.StatusBadRequest
		appErr = apperrors.InvalidInput(err.Error())
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		appErr = apperrors.NotFound("session")
	default:
		a.logger.Error("[UI] request failed: %v", err)
		status = http.StatusInternalServerError
		appErr = apperrors.InternalError("internal error")
	}
	a.writeJSON(w, status, errorResponse{Error: appErr.Message, Code: apperrors.GetCode(appErr)})
}

// queryList splits a comma-separated query parameter into trimmed names.
func queryList(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// queryInts parses a comma-separated list of integers.
func queryInts(r *http.Request, key string) ([]int, error) {
	var out []int
	for _, p := range queryList(r, key) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, core.NewValidationError(key, "not an integer: "+p)
		}
		out = append(out, n)
	}
	return out, nil
}

// queryInt parses one integer parameter with a default.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(key, "not an integer: "+raw)
	}
	return n, nil
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// queryFloat parses one float parameter with a default.
func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.NewValidationError(key, "not a number: "+raw)
	}
	return v, nil
}
