package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	rows, err := s.service.List(ctx, filtersFromQuery(r))
	if err != nil {
		logger.ErrorContext(ctx, "List transactions failed", log.NewFields().
			WithOperation(log.OpList).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		logger.WarnContext(ctx, "Transaction rejected", log.NewFields().
			WithOperation(log.OpCreate).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.service.Create(ctx, tx); err != nil {
		logger.ErrorContext(ctx, "Create transaction failed", log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(tx.ID, tx.Name, core.FormatAmount(tx.Amount), tx.Category).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}
	writeSuccess(w, "Transaction added successfully")
}

// handleTransactionByID routes PUT and DELETE on /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	patch, err := parsePatch(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.service.Update(ctx, id, patch); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		logger.ErrorContext(ctx, "Update transaction failed", log.NewFields().
			WithOperation(log.OpUpdate).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}
	writeSuccess(w, "Transaction updated successfully")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if err := s.service.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		logger.ErrorContext(ctx, "Delete transaction failed", log.NewFields().
			WithOperation(log.OpDelete).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	writeSuccess(w, "Transaction deleted successfully")
}
