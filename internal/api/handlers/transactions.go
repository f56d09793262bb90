package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/finsight/internal/api/middleware"
	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/store"
)

// reviewConfidenceThreshold marks low-confidence fallback classifications
// for manual review.
const reviewConfidenceThreshold = 65

// listTransactions handles GET /api/transactions with optional from/to
// query parameters (YYYY-MM-DD, from inclusive, to exclusive).
func (a *API) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var (
		txs []*domain.Transaction
		err error
	)
	if from != "" || to != "" {
		txs, err = a.store.ListTransactionsByDateRange(r.Context(), userID, from, to)
	} else {
		txs, err = a.store.ListTransactions(r.Context(), userID)
	}
	if err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// pendingReview handles GET /api/transactions/pending-review: transactions
// the model dumped in the fallback category without conviction.
func (a *API) pendingReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	txs, err := a.store.ListTransactions(r.Context(), userID)
	if err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	pending := make([]*domain.Transaction, 0)
	for _, tx := range txs {
		if tx.Category == "Others" && tx.Confidence < reviewConfidenceThreshold {
			pending = append(pending, tx)
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": pending,
		"count":        len(pending),
	})
}

type updateCategoryRequest struct {
	TransactionID string  `json:"transaction_id"`
	NewCategory   string  `json:"new_category"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
}

// updateCategory handles POST /api/transactions/update-category: a manual
// correction that also teaches a learned rule keyed by title and amount.
func (a *API) updateCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TransactionID == "" || req.NewCategory == "" || req.Title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "transaction_id, new_category and title are required")
		return
	}

	err := a.store.UpdateTransactionCategory(r.Context(), userID, req.TransactionID, req.NewCategory)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		a.log.Error().Err(err).Str("tx_id", req.TransactionID).Msg("failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	rule := &domain.CategoryRule{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.NewCategory,
		LearnedFrom: "manual",
		UpdatedAt:   time.Now().UTC(),
	}
	if err := a.store.PutRule(r.Context(), userID, rule); err != nil {
		a.log.Error().Err(err).Str("tx_id", req.TransactionID).Msg("failed to save learned rule")
		middleware.WriteError(w, http.StatusInternalServerError, "category updated but learning failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "category updated and learning saved",
	})
}
