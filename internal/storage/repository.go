package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is the durable Store backed by a single SQLite file.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
	path    string
}

// Open creates or loads the database at dbPath and migrates it. Every
// failure is reported as core.ErrStorageUnavailable.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", core.ErrStorageUnavailable, err)
	}
	// One connection: all access is serialized like a single view context.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", core.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx, "SQLite store opened", "path", dbPath)

	return &SQLiteStore{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// Begin starts a session. Readers on the store block until the session is
// saved or discarded, so callers must read through the session meanwhile.
func (s *SQLiteStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", core.ErrPersistence, err)
	}
	return &sqliteSession{tx: tx, queries: s.queries.WithTx(tx)}, nil
}

func (s *SQLiteStore) Card(ctx context.Context, id string) (core.Card, error) {
	return loadCard(ctx, s.queries, id)
}

func (s *SQLiteStore) Cards(ctx context.Context, q CardQuery) ([]core.Card, error) {
	rows, err := s.queries.ListCards(ctx, q.Order.Direction(Descending))
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	cards := make([]core.Card, len(rows))
	for i, row := range rows {
		cards[i] = row.toCore()
	}
	return cards, nil
}

func (s *SQLiteStore) CardSummaries(ctx context.Context, q CardQuery) ([]core.CardSummary, error) {
	rows, err := s.queries.ListCardSummaries(ctx, q.Order.Direction(Descending))
	if err != nil {
		return nil, fmt.Errorf("list card summaries: %w", err)
	}
	summaries := make([]core.CardSummary, len(rows))
	for i, row := range rows {
		summaries[i] = core.CardSummary{
			Card:             row.Card.toCore(),
			Balance:          row.Balance,
			TransactionCount: int(row.TransactionCount),
		}
	}
	return summaries, nil
}

func (s *SQLiteStore) Transaction(ctx context.Context, id string) (core.Transaction, error) {
	return loadTransaction(ctx, s.queries, id)
}

func (s *SQLiteStore) Transactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	rows, err := s.queries.ListTransactionsByCard(ctx, q.CardID, q.SortKey, q.Order.Direction(Ascending))
	if err != nil {
		return nil, fmt.Errorf("list transactions for card %s: %w", q.CardID, err)
	}
	transactions := make([]core.Transaction, len(rows))
	for i, row := range rows {
		transactions[i] = row.toCore()
	}
	return transactions, nil
}

type sqliteSession struct {
	tx      *sql.Tx
	queries *Queries
}

func (s *sqliteSession) Card(ctx context.Context, id string) (core.Card, error) {
	return loadCard(ctx, s.queries, id)
}

func (s *sqliteSession) Transaction(ctx context.Context, id string) (core.Transaction, error) {
	return loadTransaction(ctx, s.queries, id)
}

func (s *sqliteSession) InsertCard(ctx context.Context, c core.Card) error {
	err := s.queries.CreateCard(ctx, CreateCardParams{
		ID:              c.ID,
		Name:            c.Name,
		Number:          c.Number,
		Type:            string(c.Type),
		CreditLimit:     c.Limit,
		Color:           c.Color,
		ExpirationMonth: int64(c.ExpirationMonth),
		ExpirationYear:  int64(c.ExpirationYear),
		CreatedAt:       c.CreatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("%w: insert card %s: %w", core.ErrPersistence, c.ID, err)
	}
	return nil
}

func (s *sqliteSession) UpdateCard(ctx context.Context, c core.Card) error {
	n, err := s.queries.UpdateCard(ctx, UpdateCardParams{
		ID:              c.ID,
		Name:            c.Name,
		Number:          c.Number,
		Type:            string(c.Type),
		CreditLimit:     c.Limit,
		Color:           c.Color,
		ExpirationMonth: int64(c.ExpirationMonth),
		ExpirationYear:  int64(c.ExpirationYear),
	})
	if err != nil {
		return fmt.Errorf("%w: update card %s: %w", core.ErrPersistence, c.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update card %s: %w", c.ID, core.ErrCardNotFound)
	}
	return nil
}

func (s *sqliteSession) DeleteCard(ctx context.Context, id string) error {
	n, err := s.queries.DeleteCard(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete card %s: %w", core.ErrPersistence, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete card %s: %w", id, core.ErrCardNotFound)
	}
	return nil
}

func (s *sqliteSession) DeleteAllCards(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteAllCards(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete all cards: %w", core.ErrPersistence, err)
	}
	return n, nil
}

func (s *sqliteSession) InsertTransaction(ctx context.Context, t core.Transaction) error {
	err := s.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:        t.ID,
		CardID:    t.CardID,
		Name:      t.Name,
		Amount:    t.Amount,
		Timestamp: t.Timestamp.Unix(),
		Photo:     t.Photo,
		CreatedAt: t.CreatedAt.UnixNano(),
	})
	if isForeignKeyViolation(err) {
		return fmt.Errorf("insert transaction %s: card %s: %w", t.ID, t.CardID, core.ErrMissingCard)
	}
	if err != nil {
		return fmt.Errorf("%w: insert transaction %s: %w", core.ErrPersistence, t.ID, err)
	}
	return nil
}

func (s *sqliteSession) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := s.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:        t.ID,
		Name:      t.Name,
		Amount:    t.Amount,
		Timestamp: t.Timestamp.Unix(),
		Photo:     t.Photo,
	})
	if err != nil {
		return fmt.Errorf("%w: update transaction %s: %w", core.ErrPersistence, t.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update transaction %s: %w", t.ID, core.ErrTransactionNotFound)
	}
	return nil
}

func (s *sqliteSession) DeleteTransaction(ctx context.Context, id string) error {
	n, err := s.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete transaction %s: %w", core.ErrPersistence, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrTransactionNotFound)
	}
	return nil
}

func (s *sqliteSession) Save() error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrPersistence, err)
	}
	return nil
}

func (s *sqliteSession) Discard() error {
	err := s.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: rollback: %w", core.ErrPersistence, err)
	}
	return nil
}

func loadCard(ctx context.Context, q *Queries, id string) (core.Card, error) {
	row, err := q.GetCard(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, fmt.Errorf("get card %s: %w", id, core.ErrCardNotFound)
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card %s: %w", id, err)
	}
	return row.toCore(), nil
}

func loadTransaction(ctx context.Context, q *Queries, id string) (core.Transaction, error) {
	row, err := q.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, core.ErrTransactionNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return row.toCore(), nil
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		(se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "FOREIGN KEY"))
}
