// Package handlers implements the HTTP API: statement upload, transaction
// queries and corrections, and savings-goal management.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finsight/finsight/internal/api/middleware"
	"github.com/finsight/finsight/internal/goals"
	"github.com/finsight/finsight/internal/pipeline"
	"github.com/finsight/finsight/internal/store"
)

// API bundles the handlers' shared collaborators.
type API struct {
	store     store.Store
	pipe      *pipeline.Pipeline
	allocator *goals.Engine
	log       zerolog.Logger
}

// New creates the API handler set.
func New(st store.Store, pipe *pipeline.Pipeline, allocator *goals.Engine, log zerolog.Logger) *API {
	return &API{store: st, pipe: pipe, allocator: allocator, log: log}
}

// Router assembles the route table and middleware chain.
func (a *API) Router(verifier middleware.TokenVerifier) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.health)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/statements/upload", a.uploadStatement)
	authed.HandleFunc("GET /api/transactions", a.listTransactions)
	authed.HandleFunc("GET /api/transactions/pending-review", a.pendingReview)
	authed.HandleFunc("POST /api/transactions/update-category", a.updateCategory)
	authed.HandleFunc("GET /api/goals", a.listGoals)
	authed.HandleFunc("POST /api/goals", a.createGoal)
	authed.HandleFunc("PUT /api/goals/{id}", a.updateGoal)
	authed.HandleFunc("DELETE /api/goals/{id}", a.deleteGoal)
	authed.HandleFunc("POST /api/goals/allocate", a.reallocate)

	mux.Handle("/api/", middleware.Auth(verifier)(authed))

	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.RequestID(h)
	h = middleware.Logger(a.log)(h)
	h = middleware.Recovery(a.log)(h)
	return h
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
