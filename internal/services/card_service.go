package services

import (
	"context"
	"fmt"
	"time"

	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/storage"
)

// CardInput carries the user-entered fields of a card. LimitText is parsed
// leniently; zero expiration fields are replaced with defaults.
type CardInput struct {
	Name            string
	Number          string
	Type            core.CardType
	LimitText       string
	ExpirationMonth int
	ExpirationYear  int
	Color           []byte
}

// CardService orchestrates card operations over a storage.Store
type CardService struct {
	store storage.Store
	now   func() time.Time
}

func NewCardService(store storage.Store) *CardService {
	return &CardService{
		store: store,
		now:   time.Now,
	}
}

// CreateCard validates the input, assigns an id and persists the card.
func (s *CardService) CreateCard(ctx context.Context, in CardInput) (core.Card, error) {
	now := s.now()
	card := s.build(ctx, in, now)
	if err := card.Validate(now); err != nil {
		return core.Card{}, err
	}
	card.ID = core.NewID()
	card.CreatedAt = now

	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		return sess.InsertCard(ctx, card)
	})
	if err != nil {
		return core.Card{}, fmt.Errorf("create card: %w", err)
	}

	s.log(ctx).InfoContext(ctx, "Card created", applog.FieldCardID, card.ID, "type", card.Type)
	return card, nil
}

// UpdateCard rewrites every mutable field of card. The id and creation time
// are kept. A stored expiration whose year has passed may be kept as is; a
// changed year must fall in the selectable window.
func (s *CardService) UpdateCard(ctx context.Context, card core.Card, in CardInput) (core.Card, error) {
	now := s.now()
	updated := s.build(ctx, in, now)

	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		current, err := sess.Card(ctx, card.ID)
		if err != nil {
			return err
		}
		if updated.ExpirationYear == current.ExpirationYear {
			err = core.ValidateExpirationMonth(updated.ExpirationMonth)
		} else {
			err = updated.Validate(now)
		}
		if err != nil {
			return err
		}
		updated.ID = current.ID
		updated.CreatedAt = current.CreatedAt
		return sess.UpdateCard(ctx, updated)
	})
	if err != nil {
		return core.Card{}, fmt.Errorf("update card: %w", err)
	}

	s.log(ctx).InfoContext(ctx, "Card updated", applog.FieldCardID, updated.ID)
	return updated, nil
}

// DeleteCard removes card together with its transactions.
func (s *CardService) DeleteCard(ctx context.Context, card core.Card) error {
	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		return sess.DeleteCard(ctx, card.ID)
	})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "Card deleted", applog.FieldCardID, card.ID)
	return nil
}

// DeleteAllCards wipes every card and transaction. Nothing is touched unless
// confirmed is true.
func (s *CardService) DeleteAllCards(ctx context.Context, confirmed bool) (int64, error) {
	if !confirmed {
		return 0, fmt.Errorf("delete all cards: %w", core.ErrConfirmationRequired)
	}

	var deleted int64
	err := storage.Atomic(ctx, s.store, func(sess storage.Session) error {
		n, err := sess.DeleteAllCards(ctx)
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete all cards: %w", err)
	}

	s.log(ctx).WarnContext(ctx, "All cards deleted", applog.FieldCount, deleted)
	return deleted, nil
}

// ListCards returns every card, newest first.
func (s *CardService) ListCards(ctx context.Context) ([]core.Card, error) {
	cards, err := s.store.Cards(ctx, storage.CardQuery{Order: storage.Descending})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return cards, nil
}

func (s *CardService) Card(ctx context.Context, id string) (core.Card, error) {
	card, err := s.store.Card(ctx, id)
	if err != nil && !storage.IsNotFound(err) {
		return core.Card{}, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return card, err
}

// Summaries returns every card with its balance, newest first.
func (s *CardService) Summaries(ctx context.Context) ([]core.CardSummary, error) {
	summaries, err := s.store.CardSummaries(ctx, storage.CardQuery{Order: storage.Descending})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return summaries, nil
}

func (s *CardService) log(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentCard)
}

// build applies defaults to in. Expiration is validated by the caller.
func (s *CardService) build(ctx context.Context, in CardInput, now time.Time) core.Card {
	limit, warning := core.ParseLimitOrZero(in.LimitText)
	if warning != nil {
		s.log(ctx).WarnContext(ctx, "Credit limit replaced with zero", "input", warning.Input, "error", warning)
	}

	card := core.Card{
		Name:            in.Name,
		Number:          in.Number,
		Type:            in.Type,
		Limit:           limit,
		Color:           in.Color,
		ExpirationMonth: in.ExpirationMonth,
		ExpirationYear:  in.ExpirationYear,
	}
	if card.Type == "" {
		card.Type = core.Visa
	} else if !card.Type.IsKnown() {
		s.log(ctx).WarnContext(ctx, "Unrecognized card type kept", "type", card.Type)
	}
	if card.ExpirationMonth == 0 {
		card.ExpirationMonth = 1
	}
	if card.ExpirationYear == 0 {
		card.ExpirationYear = now.Year()
	}
	if len(card.Color) == 0 {
		card.Color = core.EncodeColor(core.DefaultCardColor)
	}

	return card
}
