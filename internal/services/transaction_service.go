package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/storage"
)

// TransactionInput carries the user-entered fields of a transaction.
// A zero Date means now.
type TransactionInput struct {
	Name       string
	AmountText string
	Date       time.Time
	Photo      []byte
}

// TransactionService orchestrates transaction operations over a storage.Store
type TransactionService struct {
	store storage.Store
	now   func() time.Time
}

func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{
		store: store,
		now:   time.Now,
	}
}

// CreateTransaction records a transaction against card. It fails with
// core.ErrMissingCard when the card no longer exists.
func (s *TransactionService) CreateTransaction(ctx context.Context, card core.Card, in TransactionInput) (core.Transaction, error) {
	now := s.now()
	tx := s.build(ctx, in, now)
	tx.ID = core.NewID()
	tx.CardID = card.ID
	tx.CreatedAt = now

	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		if _, err := sess.Card(ctx, card.ID); err != nil {
			if errors.Is(err, core.ErrCardNotFound) {
				return fmt.Errorf("card %s: %w", card.ID, core.ErrMissingCard)
			}
			return err
		}
		return sess.InsertTransaction(ctx, tx)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.log(ctx).InfoContext(ctx, "Transaction created",
		applog.FieldTransactionID, tx.ID, applog.FieldCardID, tx.CardID, "amount", tx.Amount, "has_photo", len(tx.Photo) > 0)
	return tx, nil
}

// ListTransactions returns the transactions of card in creation order. A
// deleted card yields an empty list.
func (s *TransactionService) ListTransactions(ctx context.Context, card core.Card) ([]core.Transaction, error) {
	return s.ListTransactionsSorted(ctx, card, storage.SortByCreation, storage.Ascending)
}

// ListTransactionsSorted is ListTransactions with an explicit sort.
func (s *TransactionService) ListTransactionsSorted(ctx context.Context, card core.Card, key storage.TransactionSortKey, order storage.SortOrder) ([]core.Transaction, error) {
	txs, err := s.store.Transactions(ctx, storage.TransactionQuery{
		CardID:  card.ID,
		SortKey: key,
		Order:   order,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return txs, nil
}

// UpdateTransaction rewrites the name, amount, date and photo of tx. The card
// association and creation time are kept.
func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction, in TransactionInput) (core.Transaction, error) {
	updated := s.build(ctx, in, s.now())

	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		current, err := sess.Transaction(ctx, tx.ID)
		if err != nil {
			return err
		}
		updated.ID = current.ID
		updated.CardID = current.CardID
		updated.CreatedAt = current.CreatedAt
		return sess.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.log(ctx).InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, updated.ID, applog.FieldCardID, updated.CardID)
	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, tx core.Transaction) error {
	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		return sess.DeleteTransaction(ctx, tx.ID)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, tx.ID)
	return nil
}

func (s *TransactionService) Transaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := s.store.Transaction(ctx, id)
	if err != nil && !storage.IsNotFound(err) {
		return core.Transaction{}, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return tx, err
}

func (s *TransactionService) log(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentTransaction)
}

func (s *TransactionService) build(ctx context.Context, in TransactionInput, now time.Time) core.Transaction {
	amount, warning := core.ParseAmountOrZero(in.AmountText)
	if warning != nil {
		s.log(ctx).WarnContext(ctx, "Amount replaced with zero", "input", warning.Input, "error", warning)
	}

	date := in.Date
	if date.IsZero() {
		date = now
	}
	// stored with second precision
	date = date.Truncate(time.Second)

	return core.Transaction{
		Name:      in.Name,
		Amount:    amount,
		Timestamp: date,
		Photo:     in.Photo,
	}
}
