package storage

import (
	"time"

	"spendingtracker/internal/core"
)

// Card is a row of the cards table.
type Card struct {
	Seq             int64
	ID              string
	Name            string
	Number          string
	Type            string
	CreditLimit     float64
	Color           []byte
	ExpirationMonth int64
	ExpirationYear  int64
	CreatedAt       int64
}

// CardTransaction is a row of the card_transactions table.
type CardTransaction struct {
	Seq       int64
	ID        string
	CardID    string
	Name      string
	Amount    float64
	Timestamp int64 // unix seconds
	Photo     []byte
	CreatedAt int64
}

type CardSummaryRow struct {
	Card
	Balance          float64
	TransactionCount int64
}

func (c Card) toCore() core.Card {
	return core.Card{
		ID:              c.ID,
		Name:            c.Name,
		Number:          c.Number,
		Type:            core.CardType(c.Type),
		Limit:           c.CreditLimit,
		Color:           c.Color,
		ExpirationMonth: int(c.ExpirationMonth),
		ExpirationYear:  int(c.ExpirationYear),
		CreatedAt:       fromUnixNano(c.CreatedAt),
	}
}

func (t CardTransaction) toCore() core.Transaction {
	return core.Transaction{
		ID:        t.ID,
		CardID:    t.CardID,
		Name:      t.Name,
		Amount:    t.Amount,
		Timestamp: time.Unix(t.Timestamp, 0).UTC(),
		Photo:     t.Photo,
		CreatedAt: fromUnixNano(t.CreatedAt),
	}
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
