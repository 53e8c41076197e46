package http

import (
	"time"

	"spendingtracker/internal/core"
)

type cardView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Number          string  `json:"number"`
	Type            string  `json:"type"`
	Icon            string  `json:"icon"`
	Limit           float64 `json:"limit"`
	LimitLabel      string  `json:"limit_label"`
	Color           string  `json:"color"`
	ExpirationMonth int     `json:"expiration_month"`
	ExpirationYear  int     `json:"expiration_year"`
	ExpirationLabel string  `json:"expiration_label"`
	CreatedAt       string  `json:"created_at"`
}

type cardSummaryView struct {
	cardView
	Balance          float64 `json:"balance"`
	BalanceLabel     string  `json:"balance_label"`
	AvailableCredit  float64 `json:"available_credit"`
	TransactionCount int     `json:"transaction_count"`
}

type transactionView struct {
	ID        string  `json:"id"`
	CardID    string  `json:"card_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	HasPhoto  bool    `json:"has_photo"`
	PhotoURL  string  `json:"photo_url,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// cardOptionsView lists the values offered by the add-card form.
type cardOptionsView struct {
	Types           []string `json:"types"`
	ExpirationYears []int    `json:"expiration_years"`
	DefaultColor    string   `json:"default_color"`
}

func newCardView(c core.Card) cardView {
	return cardView{
		ID:              c.ID,
		Name:            c.Name,
		Number:          c.Number,
		Type:            string(c.Type),
		Icon:            c.Type.IconName(),
		Limit:           c.Limit,
		LimitLabel:      c.CreditLimitLabel(),
		Color:           c.DisplayColor().Hex(),
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
		ExpirationLabel: c.ExpirationLabel(),
		CreatedAt:       c.CreatedAt.Format(time.RFC3339Nano),
	}
}

func newCardSummaryView(s core.CardSummary) cardSummaryView {
	return cardSummaryView{
		cardView:         newCardView(s.Card),
		Balance:          s.Balance,
		BalanceLabel:     s.BalanceLabel(),
		AvailableCredit:  s.AvailableCredit(),
		TransactionCount: s.TransactionCount,
	}
}

func newTransactionView(t core.Transaction) transactionView {
	v := transactionView{
		ID:        t.ID,
		CardID:    t.CardID,
		Name:      t.Name,
		Amount:    t.Amount,
		Date:      t.Timestamp.Format(time.RFC3339),
		HasPhoto:  len(t.Photo) > 0,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
	}
	if v.HasPhoto {
		v.PhotoURL = "/transactions/" + t.ID + "/photo"
	}
	return v
}

func newCardOptionsView(now time.Time) cardOptionsView {
	types := core.CardTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return cardOptionsView{
		Types:           names,
		ExpirationYears: core.ExpirationYears(now),
		DefaultColor:    core.DefaultCardColor.Hex(),
	}
}
