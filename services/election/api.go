package election

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ballotd/pkg/db"
)

// Config controls runtime behaviour for the election API handlers.
type Config struct {
	AdminKey         string
	AdminTokenTTL    time.Duration
	SessionTTL       time.Duration
	VotingPeriodDays int
	LetterTemplates  string
	AllowedOrigins   []string
}

// API wires the store, the voting engine, and configuration for HTTP
// handlers.
type API struct {
	store   *Store
	engine  *Engine
	config  Config
	admin   *adminTokenStore
	letters map[string]LetterTemplate
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(store *Store, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.AdminKey == "" {
		return nil, errors.New("admin key is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.VotingPeriodDays <= 0 {
		cfg.VotingPeriodDays = DefaultVotingPeriodDays
	}

	engine, err := NewEngine(store, cfg.SessionTTL, store.PublishJSON)
	if err != nil {
		return nil, err
	}

	letters := map[string]LetterTemplate{}
	if cfg.LetterTemplates != "" {
		letters, err = LoadLetterTemplates(cfg.LetterTemplates)
		if err != nil {
			// A missing file just means no letters are configured.
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			letters = map[string]LetterTemplate{}
		}
	}

	return &API{
		store:   store,
		engine:  engine,
		config:  cfg,
		admin:   newAdminTokenStore(cfg.AdminTokenTTL),
		letters: letters,
	}, nil
}

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			// Credential endpoints get a brute-force guard.
			r.Use(httprate.Limit(30, time.Minute))
			r.Post("/auth", a.handleAuthenticate)
			r.Post("/admin/login", a.handleAdminLogin)
		})

		r.Get("/session", a.handleSession)
		r.Post("/logout", a.handleLogout)
		r.Get("/candidates", a.handleBallotOptions)
		r.Post("/vote", a.handleCastVote)

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.requireAdmin)

			r.Get("/results", a.handleResults)

			r.Route("/voters", func(r chi.Router) {
				r.Get("/", a.handleListVoters)
				r.Post("/", a.handleCreateVoter)
				r.Post("/import", a.handleImportRoster)
				r.Put("/{id}", a.handleUpdateVoter)
				r.Delete("/{id}", a.handleDeleteVoter)
			})

			r.Route("/candidates", func(r chi.Router) {
				r.Get("/", a.handleListCandidates)
				r.Post("/", a.handleCreateCandidate)
				r.Put("/{id}", a.handleUpdateCandidate)
				r.Delete("/{id}", a.handleDeleteCandidate)
			})

			r.Route("/election", func(r chi.Router) {
				r.Get("/", a.handleGetSettings)
				r.Post("/start", a.handleStartElection)
				r.Post("/end", a.handleEndElection)
				r.Post("/extend", a.handleExtendPeriod)
				r.Post("/regenerate-codes", a.handleRegenerateCodes)
				r.Post("/reset", a.handleResetElection)
			})

			r.Post("/letters/render", a.handleRenderLetter)
		})
	})

	return r, nil
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), a.store.DB); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
