// Package memory is a Store kept entirely in process memory. Nothing
// survives a restart; it backs tests and throwaway runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"spendingtracker/internal/core"
	"spendingtracker/internal/storage"
)

type state struct {
	seq          int64
	cards        map[string]cardEntry
	transactions map[string]transactionEntry
}

type cardEntry struct {
	seq  int64
	card core.Card
}

type transactionEntry struct {
	seq int64
	tx  core.Transaction
}

// Store admits one session at a time, matching the single-writer SQLite store.
type Store struct {
	mu     sync.Mutex
	state  *state
	writer chan struct{}
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		state: &state{
			cards:        map[string]cardEntry{},
			transactions: map[string]transactionEntry{},
		},
		writer: make(chan struct{}, 1),
	}
}

func (s *Store) Close() error { return nil }

// Begin waits for the previous session to finish, then copies the committed
// state; the session works on the copy and Save swaps it in.
func (s *Store) Begin(ctx context.Context) (storage.Session, error) {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: begin: %w", core.ErrPersistence, ctx.Err())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &session{store: s, work: s.state.clone()}, nil
}

func (s *Store) snapshot() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Card(_ context.Context, id string) (core.Card, error) {
	return s.snapshot().card(id)
}

func (s *Store) Cards(_ context.Context, q storage.CardQuery) ([]core.Card, error) {
	entries := s.snapshot().sortedCards(q.Order.Direction(storage.Descending))
	cards := make([]core.Card, len(entries))
	for i, e := range entries {
		cards[i] = cloneCard(e.card)
	}
	return cards, nil
}

func (s *Store) CardSummaries(_ context.Context, q storage.CardQuery) ([]core.CardSummary, error) {
	st := s.snapshot()
	entries := st.sortedCards(q.Order.Direction(storage.Descending))
	summaries := make([]core.CardSummary, len(entries))
	for i, e := range entries {
		summaries[i] = core.CardSummary{Card: cloneCard(e.card)}
	}
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.card.ID] = i
	}
	for _, te := range st.transactions {
		if i, ok := index[te.tx.CardID]; ok {
			summaries[i].Balance += te.tx.Amount
			summaries[i].TransactionCount++
		}
	}
	return summaries, nil
}

func (s *Store) Transaction(_ context.Context, id string) (core.Transaction, error) {
	return s.snapshot().transaction(id)
}

func (s *Store) Transactions(_ context.Context, q storage.TransactionQuery) ([]core.Transaction, error) {
	st := s.snapshot()
	var entries []transactionEntry
	for _, te := range st.transactions {
		if te.tx.CardID == q.CardID {
			entries = append(entries, te)
		}
	}

	key := q.SortKey.Key()
	desc := q.Order.Direction(storage.Ascending) == storage.Descending
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ta, tb := a.tx.CreatedAt, b.tx.CreatedAt
		if key == storage.SortByDate {
			ta, tb = a.tx.Timestamp, b.tx.Timestamp
		}
		if !ta.Equal(tb) {
			return ta.Before(tb) != desc
		}
		return (a.seq < b.seq) != desc
	})

	out := make([]core.Transaction, len(entries))
	for i, e := range entries {
		out[i] = cloneTransaction(e.tx)
	}
	return out, nil
}

type session struct {
	store *Store
	work  *state
	done  bool
}

func (s *session) Card(_ context.Context, id string) (core.Card, error) {
	return s.work.card(id)
}

func (s *session) Transaction(_ context.Context, id string) (core.Transaction, error) {
	return s.work.transaction(id)
}

func (s *session) InsertCard(_ context.Context, c core.Card) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, exists := s.work.cards[c.ID]; exists {
		return fmt.Errorf("%w: insert card %s: duplicate id", core.ErrPersistence, c.ID)
	}
	s.work.seq++
	s.work.cards[c.ID] = cardEntry{seq: s.work.seq, card: cloneCard(c)}
	return nil
}

func (s *session) UpdateCard(_ context.Context, c core.Card) error {
	if err := s.check(); err != nil {
		return err
	}
	e, ok := s.work.cards[c.ID]
	if !ok {
		return fmt.Errorf("update card %s: %w", c.ID, core.ErrCardNotFound)
	}
	c.CreatedAt = e.card.CreatedAt
	e.card = cloneCard(c)
	s.work.cards[c.ID] = e
	return nil
}

func (s *session) DeleteCard(_ context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.work.cards[id]; !ok {
		return fmt.Errorf("delete card %s: %w", id, core.ErrCardNotFound)
	}
	s.work.deleteCard(id)
	return nil
}

func (s *session) DeleteAllCards(_ context.Context) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n := int64(len(s.work.cards))
	for id := range s.work.cards {
		s.work.deleteCard(id)
	}
	return n, nil
}

func (s *session) InsertTransaction(_ context.Context, t core.Transaction) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.work.cards[t.CardID]; !ok {
		return fmt.Errorf("insert transaction %s: card %s: %w", t.ID, t.CardID, core.ErrMissingCard)
	}
	if _, exists := s.work.transactions[t.ID]; exists {
		return fmt.Errorf("%w: insert transaction %s: duplicate id", core.ErrPersistence, t.ID)
	}
	s.work.seq++
	s.work.transactions[t.ID] = transactionEntry{seq: s.work.seq, tx: cloneTransaction(t)}
	return nil
}

func (s *session) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := s.check(); err != nil {
		return err
	}
	e, ok := s.work.transactions[t.ID]
	if !ok {
		return fmt.Errorf("update transaction %s: %w", t.ID, core.ErrTransactionNotFound)
	}
	// card association and creation time are not rewritable
	t.CardID = e.tx.CardID
	t.CreatedAt = e.tx.CreatedAt
	e.tx = cloneTransaction(t)
	s.work.transactions[t.ID] = e
	return nil
}

func (s *session) DeleteTransaction(_ context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.work.transactions[id]; !ok {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrTransactionNotFound)
	}
	delete(s.work.transactions, id)
	return nil
}

func (s *session) check() error {
	if s.done {
		return fmt.Errorf("%w: session already finished", core.ErrPersistence)
	}
	return nil
}

func (s *session) Save() error {
	if err := s.check(); err != nil {
		return err
	}
	s.store.mu.Lock()
	s.store.state = s.work
	s.store.mu.Unlock()
	s.finish()
	return nil
}

func (s *session) Discard() error {
	if !s.done {
		s.finish()
	}
	return nil
}

func (s *session) finish() {
	s.done = true
	<-s.store.writer
}

func (st *state) clone() *state {
	out := &state{
		seq:          st.seq,
		cards:        make(map[string]cardEntry, len(st.cards)),
		transactions: make(map[string]transactionEntry, len(st.transactions)),
	}
	for k, v := range st.cards {
		out.cards[k] = v
	}
	for k, v := range st.transactions {
		out.transactions[k] = v
	}
	return out
}

func (st *state) card(id string) (core.Card, error) {
	e, ok := st.cards[id]
	if !ok {
		return core.Card{}, fmt.Errorf("get card %s: %w", id, core.ErrCardNotFound)
	}
	return cloneCard(e.card), nil
}

func (st *state) transaction(id string) (core.Transaction, error) {
	e, ok := st.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, core.ErrTransactionNotFound)
	}
	return cloneTransaction(e.tx), nil
}

func (st *state) deleteCard(id string) {
	delete(st.cards, id)
	for txID, te := range st.transactions {
		if te.tx.CardID == id {
			delete(st.transactions, txID)
		}
	}
}

func (st *state) sortedCards(order storage.SortOrder) []cardEntry {
	entries := make([]cardEntry, 0, len(st.cards))
	for _, e := range st.cards {
		entries = append(entries, e)
	}
	desc := order == storage.Descending
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.card.CreatedAt.Equal(b.card.CreatedAt) {
			return a.card.CreatedAt.Before(b.card.CreatedAt) != desc
		}
		return (a.seq < b.seq) != desc
	})
	return entries
}

func cloneCard(c core.Card) core.Card {
	c.Color = cloneBytes(c.Color)
	return c
}

func cloneTransaction(t core.Transaction) core.Transaction {
	t.Photo = cloneBytes(t.Photo)
	return t
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
