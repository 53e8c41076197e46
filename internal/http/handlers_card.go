package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendingtracker/internal/cache"
	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"
)

const summariesCacheKey = "summaries"

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	views, hit, err := cache.Load(s.lists, s.summaryCache, summariesCacheKey, func() ([]cardSummaryView, error) {
		summaries, err := s.cards.Summaries(r.Context())
		if err != nil {
			return nil, err
		}
		views := make([]cardSummaryView, len(summaries))
		for i, summary := range summaries {
			views[i] = newCardSummaryView(summary)
		}
		return views, nil
	})
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	NewJSONResponse().Header("X-Cache", cacheStatus(hit)).Body(views).Write(w)
}

func (s *Server) handleCardOptions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(newCardOptionsView(s.now())).Write(w)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	in, err := parseCardRequest(w, r)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	card, err := s.cards.CreateCard(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.lists.Invalidate()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/cards/"+card.ID).
		Body(newCardView(card)).
		Write(w)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.cardFromRequest(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(newCardView(card)).Write(w)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.cardFromRequest(w, r)
	if !ok {
		return
	}

	in, err := parseCardRequest(w, r)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	updated, err := s.cards.UpdateCard(r.Context(), card, in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.lists.Invalidate()

	NewJSONResponse().Body(newCardView(updated)).Write(w)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.cardFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.cards.DeleteCard(r.Context(), card); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.lists.Invalidate()

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllCards wipes every card. It requires ?confirm=true.
func (s *Server) handleDeleteAllCards(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.cards.DeleteAllCards(r.Context(), parseConfirm(r))
	if err != nil {
		writeError(w, r, applog.OpDeleteAll, err)
		return
	}
	s.lists.Invalidate()

	NewJSONResponse().Body(map[string]int64{"deleted": deleted}).Write(w)
}

// cardFromRequest loads the card named by the cardID route parameter,
// writing the error response itself on failure.
func (s *Server) cardFromRequest(w http.ResponseWriter, r *http.Request) (core.Card, bool) {
	card, err := s.cards.Card(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return core.Card{}, false
	}
	return card, true
}
