package election

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// rejectionStatus maps domain rejection kinds to HTTP statuses. Anything
// unmapped is a store failure and surfaces as a 500.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrNameMismatch),
		errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrDuplicateVote),
		errors.Is(err, ErrCandidateInUse),
		errors.Is(err, ErrPeriodNotExtended):
		return http.StatusConflict
	case errors.Is(err, ErrWindowClosed):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCandidate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrVoterNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// resultLabel names an outcome for the metrics counters.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrNameMismatch):
		return "name_mismatch"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrInvalidCandidate):
		return "invalid_candidate"
	case errors.Is(err, ErrDuplicateVote):
		return "duplicate_vote"
	default:
		return "store_error"
	}
}

// respondRejection writes a domain error with its mapped status. Store
// failures never leak internals; the client sees a generic retryable
// failure while the cause is logged.
func respondRejection(w http.ResponseWriter, err error) {
	status := rejectionStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("store failure")
		respondError(w, status, errors.New("temporary failure, please retry"))
		return
	}
	respondError(w, status, err)
}
