package election

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Key), []byte(a.config.AdminKey)) != 1 {
		respondError(w, http.StatusUnauthorized, errors.New("invalid key"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"token": a.admin.issue()})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.admin.valid(bearerToken(r)) {
			respondError(w, http.StatusUnauthorized, errors.New("admin token required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.store.TallyResults(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (a *API) handleListVoters(w http.ResponseWriter, r *http.Request) {
	var voted *bool
	if q := r.URL.Query().Get("voted"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("voted must be true or false"))
			return
		}
		voted = &v
	}

	voters, err := a.store.ListVoters(r.Context(), voted)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"voters": voters})
}

func (a *API) handleCreateVoter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		ElectionCode string `json:"election_code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	if req.FirstName == "" {
		respondError(w, http.StatusBadRequest, errors.New("first_name is required"))
		return
	}

	voter, err := a.store.CreateVoter(r.Context(), req.FirstName, strings.TrimSpace(req.LastName), strings.TrimSpace(req.ElectionCode))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"voter": voter})
}

func (a *API) handleUpdateVoter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid voter id is required"))
		return
	}

	var req struct {
		FirstName       string     `json:"first_name"`
		LastName        string     `json:"last_name"`
		VotingStartDate *time.Time `json:"voting_start_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	if req.FirstName == "" {
		respondError(w, http.StatusBadRequest, errors.New("first_name is required"))
		return
	}

	voter, err := a.store.UpdateVoter(r.Context(), id, req.FirstName, strings.TrimSpace(req.LastName), req.VotingStartDate)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"voter": voter})
}

func (a *API) handleDeleteVoter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid voter id is required"))
		return
	}

	if err := a.store.DeleteVoter(r.Context(), id); err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "voter deleted"})
}

// handleImportRoster accepts a CSV document in the request body. The
// detailed format (spreadsheet export, may carry voted evidence) is opted
// into via ?format=detailed; plain uploads always import as not-voted.
func (a *API) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	format := FormatSimple
	if r.URL.Query().Get("format") == "detailed" {
		format = FormatDetailed
	}

	rows, skipped, err := ParseRoster(r.Body, format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	count, err := a.store.UpsertRoster(r.Context(), rows)
	if err != nil {
		respondRejection(w, err)
		return
	}

	log.Info().Int("imported", count).Int("skipped", len(skipped)).Msg("roster import")
	respondJSON(w, http.StatusOK, map[string]any{
		"imported": count,
		"skipped":  skipped,
	})
}

func (a *API) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := a.store.ListCandidates(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

type candidateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta"`
}

func (a *API) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	candidate, err := a.store.CreateCandidate(r.Context(), req.Name, req.Description, req.Meta)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"candidate": candidate})
}

func (a *API) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid candidate id is required"))
		return
	}

	var req candidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	candidate, err := a.store.UpdateCandidate(r.Context(), id, req.Name, req.Description, req.Meta)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidate": candidate})
}

func (a *API) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid candidate id is required"))
		return
	}

	if err := a.store.DeleteCandidate(r.Context(), id); err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "candidate deleted"})
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.store.Settings(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleStartElection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VotingPeriodDays int `json:"voting_period_days"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.VotingPeriodDays <= 0 {
		req.VotingPeriodDays = a.config.VotingPeriodDays
	}

	settings, err := a.store.StartElection(r.Context(), req.VotingPeriodDays)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleEndElection(w http.ResponseWriter, r *http.Request) {
	settings, err := a.store.EndElection(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleExtendPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VotingPeriodDays int `json:"voting_period_days"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.VotingPeriodDays <= 0 {
		respondError(w, http.StatusBadRequest, errors.New("voting_period_days must be positive"))
		return
	}

	settings, err := a.store.ExtendVotingPeriod(r.Context(), req.VotingPeriodDays)
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleRegenerateCodes(w http.ResponseWriter, r *http.Request) {
	count, err := a.store.RegenerateCodes(r.Context())
	if err != nil {
		respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"regenerated": count})
}

func (a *API) handleResetElection(w http.ResponseWriter, r *http.Request) {
	if err := a.store.ResetElection(r.Context()); err != nil {
		respondRejection(w, err)
		return
	}
	log.Warn().Msg("election reset: all ballots cleared and voter statuses reset")
	respondJSON(w, http.StatusOK, map[string]any{"message": "election reset"})
}

func (a *API) handleRenderLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template     string `json:"template"`
		ElectionCode string `json:"election_code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	tmpl, ok := a.letters[req.Template]
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("unknown letter template"))
		return
	}

	voter, err := a.store.VoterByElectionCode(r.Context(), strings.TrimSpace(req.ElectionCode))
	if err != nil {
		respondRejection(w, err)
		return
	}

	body, err := RenderLetter(tmpl, voter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"subject": tmpl.Subject,
		"body":    body,
	})
}
