package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendingtracker/internal/cache"
	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/storage"
)

// handleListTransactions lists a card's transactions. Optional query
// parameters: sort=created|date and order=asc|desc.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	card, ok := s.cardFromRequest(w, r)
	if !ok {
		return
	}

	key, order, err := parseTransactionSort(r)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	cacheKey := "transactions|" + card.ID + "|" + string(key) + "|" + string(order)
	views, hit, err := cache.Load(s.lists, s.transactionCache, cacheKey, func() ([]transactionView, error) {
		txs, err := s.txs.ListTransactionsSorted(r.Context(), card, key, order)
		if err != nil {
			return nil, err
		}
		views := make([]transactionView, len(txs))
		for i, tx := range txs {
			views[i] = newTransactionView(tx)
		}
		return views, nil
	})
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	NewJSONResponse().Header("X-Cache", cacheStatus(hit)).Body(views).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	card, ok := s.cardFromRequest(w, r)
	if !ok {
		return
	}

	in, err := parseTransactionRequest(w, r, s.photos)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	tx, err := s.txs.CreateTransaction(r.Context(), card, in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.lists.Invalidate()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/transactions/"+tx.ID).
		Body(newTransactionView(tx)).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.transactionFromRequest(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(newTransactionView(tx)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.transactionFromRequest(w, r)
	if !ok {
		return
	}

	in, err := parseTransactionRequest(w, r, s.photos)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	updated, err := s.txs.UpdateTransaction(r.Context(), tx, in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.lists.Invalidate()

	NewJSONResponse().Body(newTransactionView(updated)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.transactionFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.txs.DeleteTransaction(r.Context(), tx); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.lists.Invalidate()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransactionPhoto(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.transactionFromRequest(w, r)
	if !ok {
		return
	}
	if len(tx.Photo) == 0 {
		writeError(w, r, applog.OpRead, fmt.Errorf("transaction %s: %w", tx.ID, errNoPhoto))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(tx.Photo)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tx.Photo)
}

func (s *Server) transactionFromRequest(w http.ResponseWriter, r *http.Request) (core.Transaction, bool) {
	tx, err := s.txs.Transaction(r.Context(), chi.URLParam(r, "txID"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return core.Transaction{}, false
	}
	return tx, true
}

func parseTransactionSort(r *http.Request) (storage.TransactionSortKey, storage.SortOrder, error) {
	q := r.URL.Query()

	var key storage.TransactionSortKey
	switch q.Get("sort") {
	case "", "created":
		key = storage.SortByCreation
	case "date":
		key = storage.SortByDate
	default:
		return "", "", fmt.Errorf("%w: unknown sort %q", errBadRequest, q.Get("sort"))
	}

	var order storage.SortOrder
	switch q.Get("order") {
	case "", "asc":
		order = storage.Ascending
	case "desc":
		order = storage.Descending
	default:
		return "", "", fmt.Errorf("%w: unknown order %q", errBadRequest, q.Get("order"))
	}
	return key, order, nil
}
