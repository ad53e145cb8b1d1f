package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// errorResponse is the body of every non-2xx JSON answer.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Writing response failed")
	}
}

// writeError maps err onto the error taxonomy. Clients only ever see the
// sentinel message; the full chain is logged for server errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	logger := zerolog.Ctx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	case status == http.StatusUnauthorized:
		// Expired or missing sessions are routine.
		logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Unauthenticated request")
	default:
		logger.Info().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}

	message := apperrors.Message(err)
	if status == http.StatusBadRequest && apperrors.Is(err, apperrors.ErrInvalidRequest) {
		// Validation details name fields, never values.
		message = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: apperrors.Reason(err), Message: message})
}
