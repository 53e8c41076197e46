package storage

import (
	"context"
	"errors"
	"fmt"

	"spendingtracker/internal/core"
)

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"

	SortByCreation TransactionSortKey = "created_at"
	SortByDate     TransactionSortKey = "timestamp"
)

type (
	// SortOrder is the direction of a fetch. The zero value selects the
	// default of the query it is used in.
	SortOrder string

	TransactionSortKey string

	// CardQuery fetches every card ordered by creation time, newest first
	// unless Order says otherwise.
	CardQuery struct {
		Order SortOrder
	}

	// TransactionQuery fetches the transactions of one card. By default they
	// come back in creation order.
	TransactionQuery struct {
		CardID  string
		SortKey TransactionSortKey
		Order   SortOrder
	}
)

// Ports implemented by every backend.
type (
	Reader interface {
		Card(ctx context.Context, id string) (core.Card, error)
		Cards(ctx context.Context, q CardQuery) ([]core.Card, error)
		CardSummaries(ctx context.Context, q CardQuery) ([]core.CardSummary, error)
		Transaction(ctx context.Context, id string) (core.Transaction, error)
		Transactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error)
	}

	// Session is a unit of work. Mutations become visible to other readers
	// only after Save, and either all of them apply or none do.
	Session interface {
		Card(ctx context.Context, id string) (core.Card, error)
		Transaction(ctx context.Context, id string) (core.Transaction, error)

		InsertCard(ctx context.Context, c core.Card) error
		UpdateCard(ctx context.Context, c core.Card) error
		// DeleteCard removes the card and every transaction that belongs to it.
		DeleteCard(ctx context.Context, id string) error
		DeleteAllCards(ctx context.Context) (int64, error)

		InsertTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error

		Save() error
		// Discard abandons pending mutations. It is a no-op after Save.
		Discard() error
	}

	Store interface {
		Reader
		Begin(ctx context.Context) (Session, error)
		Close() error
	}
)

// Atomic runs fn inside a new session and saves it if fn succeeds.
func Atomic(ctx context.Context, store Store, fn func(Session) error) (err error) {
	sess, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if derr := sess.Discard(); derr != nil && err == nil {
			err = fmt.Errorf("discard session: %w", derr)
		}
	}()

	if err := fn(sess); err != nil {
		return err
	}
	return sess.Save()
}

// Direction resolves the zero value to def.
func (o SortOrder) Direction(def SortOrder) SortOrder {
	switch o {
	case Ascending, Descending:
		return o
	default:
		return def
	}
}

// Key resolves the zero value to SortByCreation.
func (k TransactionSortKey) Key() TransactionSortKey {
	if k == SortByDate {
		return SortByDate
	}
	return SortByCreation
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrCardNotFound) || errors.Is(err, core.ErrTransactionNotFound)
}
