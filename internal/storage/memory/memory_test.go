package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendingtracker/internal/core"
	"spendingtracker/internal/storage"
)

func TestMemoryStoreSessionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	sess, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := sess.InsertCard(ctx, core.Card{ID: "a", CreatedAt: now, Color: []byte("#00000000")}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Card(ctx, "a"); !errors.Is(err, core.ErrCardNotFound) {
		t.Fatalf("uncommitted card should be invisible, got %v", err)
	}
	if err := sess.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := sess.InsertCard(ctx, core.Card{ID: "late"}); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected finished session to reject writes, got %v", err)
	}

	card, err := s.Card(ctx, "a")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	card.Color[0] = 'X'
	again, _ := s.Card(ctx, "a")
	if string(again.Color) != "#00000000" {
		t.Fatalf("stored color was mutated through a returned copy: %q", again.Color)
	}
}

func TestMemoryStoreCascadeAndOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	err := storage.Atomic(ctx, s, func(sess storage.Session) error {
		for i, id := range []string{"old", "new"} {
			if err := sess.InsertCard(ctx, core.Card{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
				return err
			}
		}
		if err := sess.InsertTransaction(ctx, core.Transaction{ID: "t1", CardID: "old", Amount: 2, CreatedAt: base}); err != nil {
			return err
		}
		return sess.InsertTransaction(ctx, core.Transaction{ID: "t2", CardID: "old", Amount: 3, CreatedAt: base})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	cards, _ := s.Cards(ctx, storage.CardQuery{})
	if len(cards) != 2 || cards[0].ID != "new" {
		t.Fatalf("expected newest first, got %+v", cards)
	}

	txs, _ := s.Transactions(ctx, storage.TransactionQuery{CardID: "old"})
	if len(txs) != 2 || txs[0].ID != "t1" || txs[1].ID != "t2" {
		t.Fatalf("expected insertion order on equal timestamps, got %+v", txs)
	}

	summaries, _ := s.CardSummaries(ctx, storage.CardQuery{})
	if summaries[1].Balance != 5 || summaries[1].TransactionCount != 2 {
		t.Fatalf("unexpected summary %+v", summaries[1])
	}

	if err := storage.Atomic(ctx, s, func(sess storage.Session) error { return sess.DeleteCard(ctx, "old") }); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if txs, _ := s.Transactions(ctx, storage.TransactionQuery{CardID: "old"}); len(txs) != 0 {
		t.Fatalf("expected cascade, got %+v", txs)
	}
}

func TestMemoryStoreMissingCard(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := storage.Atomic(ctx, s, func(sess storage.Session) error {
		return sess.InsertTransaction(ctx, core.Transaction{ID: "t", CardID: "ghost"})
	})
	if !errors.Is(err, core.ErrMissingCard) {
		t.Fatalf("expected ErrMissingCard, got %v", err)
	}
}

func TestMemoryStoreSerializesSessions(t *testing.T) {
	s := New()
	first, err := s.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Begin(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second session to wait, got %v", err)
	}

	if err := first.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	second, err := s.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin after discard: %v", err)
	}
	second.Discard()
}
