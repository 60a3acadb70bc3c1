package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	adminResponse "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/admin/response"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderFinalized), errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrNotificationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status code. Internal errors are logged and
// replaced with a generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFromError(err)
	body := adminResponse.ErrorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
		body.Error = verr.Reason
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		body.Error = "internal error"
	}

	writeJSON(w, status, body)
}
