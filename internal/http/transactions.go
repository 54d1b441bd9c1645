package http

import (
	"context"
	"net/http"
	"strconv"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

// cachedTransactions returns the user's full history, serving repeat reads
// from the LRU until a mutation invalidates them.
func (s *Server) cachedTransactions(ctx context.Context, user string) ([]core.Transaction, error) {
	if txns, ok := s.txnCache.Get(user); ok {
		return txns, nil
	}
	txns, err := s.transactions.List(ctx, user, 0)
	if err != nil {
		return nil, err
	}
	s.txnCache.Set(user, txns)
	return txns, nil
}

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Degraded     bool               `json:"degraded,omitempty"`
}

// handleListTransactions returns the history newest first. When the backend
// is unreachable the history view degrades to an empty list instead of an
// error page; the client shows a retry banner off the degraded flag.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, user string) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "limit must be a non-negative number"})
			return
		}
		limit = n
	}

	txns, err := s.cachedTransactions(r.Context(), user)
	if err != nil {
		if core.IsStore(err) {
			s.logger.WarnContext(r.Context(), "History read degraded to empty",
				log.FieldUser, user, log.FieldError, err)
			writeJSON(w, http.StatusOK, transactionList{Transactions: []core.Transaction{}, Degraded: true})
			return
		}
		writeError(w, err)
		return
	}

	if limit > 0 && limit < len(txns) {
		txns = txns[:limit]
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionList{Transactions: txns})
}

type transactionRequest struct {
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

func (req transactionRequest) toTransaction() core.Transaction {
	return core.Transaction{
		Date:        core.Date(req.Date),
		Type:        core.TxnType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, user string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id, err := s.transactions.Add(r.Context(), user, req.toTransaction())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, user string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.transactions.Update(r.Context(), user, r.PathValue("id"), req.toTransaction()); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, user string) {
	if err := s.transactions.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleDeleteAllTransactions backs the settings page's danger zone.
func (s *Server) handleDeleteAllTransactions(w http.ResponseWriter, r *http.Request, user string) {
	n, err := s.transactions.DeleteAll(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateUser(user)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
