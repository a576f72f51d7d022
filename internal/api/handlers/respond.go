package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/watchlist"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps an analysis error to its HTTP status
// ⭐ SSOT: 에러 → HTTP 상태 코드 매핑은 여기서만
func statusFor(err error) int {
	switch {
	case errors.Is(err, watchlist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrBenchmarkUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
