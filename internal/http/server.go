package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"spendingtracker/internal/cache"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/middleware/security"
	"spendingtracker/internal/middleware/trace"
	"spendingtracker/internal/services"
)

const (
	summaryCacheSize     = 8
	transactionCacheSize = 256
)

// Options tunes the server. Zero values fall back to the configuration defaults.
type Options struct {
	MaxPhotoBytes    int64
	PhotoJPEGQuality int
	CacheTTL         time.Duration
	Logger           *applog.Logger
}

type Server struct {
	http.Server
	cards  *services.CardService
	txs    *services.TransactionService
	photos photoOptions
	tracer *trace.Tracer

	// List responses, invalidated on every write
	lists            *cache.Group
	summaryCache     *cache.LRUCache[[]cardSummaryView]
	transactionCache *cache.LRUCache[[]transactionView]
	stopSweeper      func()

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, cards *services.CardService, txs *services.TransactionService, opts Options) *Server {
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = 10 << 20
	}
	if opts.PhotoJPEGQuality <= 0 {
		opts.PhotoJPEGQuality = 50
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		cards:            cards,
		txs:              txs,
		photos:           photoOptions{MaxBytes: opts.MaxPhotoBytes, Quality: opts.PhotoJPEGQuality},
		tracer:           trace.New(logger, extractClientIP),
		lists:            cache.NewGroup(logger),
		summaryCache:     cache.NewLRUCache[[]cardSummaryView](summaryCacheSize, opts.CacheTTL),
		transactionCache: cache.NewLRUCache[[]transactionView](transactionCacheSize, opts.CacheTTL),
		started:          time.Now(),
		now:              time.Now,
	}

	s.lists.Add(s.summaryCache)
	s.lists.Add(s.transactionCache)
	if opts.CacheTTL > 0 {
		s.stopSweeper = s.lists.StartSweeper(opts.CacheTTL)
	}

	r := chi.NewRouter()
	r.Use(
		s.tracer.Handler,
		applog.Middleware(logger, func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		security.APIPolicy().Middleware,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "route not found", trace.GetRequestID(r.Context())).Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed", trace.GetRequestID(r.Context())).Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/cards", func(r chi.Router) {
		r.Get("/", s.handleListCards)
		r.Post("/", s.handleCreateCard)
		r.Delete("/", s.handleDeleteAllCards)
		r.Get("/options", s.handleCardOptions)
		r.Route("/{cardID}", func(r chi.Router) {
			r.Get("/", s.handleGetCard)
			r.Put("/", s.handleUpdateCard)
			r.Delete("/", s.handleDeleteCard)
			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
		})
	})

	r.Route("/transactions/{txID}", func(r chi.Router) {
		r.Get("/", s.handleGetTransaction)
		r.Put("/", s.handleUpdateTransaction)
		r.Delete("/", s.handleDeleteTransaction)
		r.Get("/photo", s.handleTransactionPhoto)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopSweeper != nil {
			s.stopSweeper()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
		"requests":  s.tracer.Stats(),
	}).Write(w)
}

// handleReady checks that the store answers a read
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	storeCheck := "ok"
	if _, err := s.cards.ListCards(ctx); err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		storeCheck = "failed: " + err.Error()
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status": status,
		"checks": map[string]any{
			"store": storeCheck,
			"cache": map[string]any{
				"enabled":             s.summaryCache.Enabled(),
				"summary_entries":     s.summaryCache.Size(),
				"transaction_entries": s.transactionCache.Size(),
			},
		},
	}).Write(w)
}

// trustedProxies defines networks that are trusted to set forwarding headers.
var trustedProxies = []*net.IPNet{
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("::1/128"),
}

func mustParseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic("parse trusted proxy CIDR " + cidr + ": " + err.Error())
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}
