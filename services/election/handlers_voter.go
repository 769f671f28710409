package election

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type authenticateRequest struct {
	ElectionCode string `json:"election_code"`
	Name         string `json:"name"`
}

type authenticateResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
}

func (a *API) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sess, voter, err := a.engine.Authenticate(r.Context(), req.ElectionCode, req.Name)
	authAttempts.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		respondRejection(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authenticateResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		FirstName: voter.FirstName,
		LastName:  voter.LastName,
	})
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, voter, err := a.engine.VerifySession(r.Context(), bearerToken(r))
	if err != nil {
		respondRejection(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"voter_id":   voter.ID,
		"first_name": voter.FirstName,
		"last_name":  voter.LastName,
		"expires_at": sess.ExpiresAt,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Logout(r.Context(), bearerToken(r)); err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// handleBallotOptions lists candidates for the ballot screen. A live voter
// session is required; the admin list endpoint serves the dashboard instead.
func (a *API) handleBallotOptions(w http.ResponseWriter, r *http.Request) {
	if _, _, err := a.engine.VerifySession(r.Context(), bearerToken(r)); err != nil {
		respondRejection(w, err)
		return
	}

	candidates, err := a.store.ListCandidates(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

type castVoteRequest struct {
	CandidateID uuid.UUID `json:"candidate_id"`
}

func (a *API) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, errors.New("session token required"))
		return
	}

	ballot, err := a.engine.CastVote(r.Context(), token, req.CandidateID)
	ballotsCast.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		respondRejection(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"ballot_id": ballot.ID,
		"cast_at":   ballot.CreatedAt,
		"message":   "thank you for voting",
	})
}
