// Package http exposes the JSON API consumed by the web client: session
// cookies, transaction and category CRUD, aggregated reports and file exports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

// Options tunes the server; zero values fall back to sensible defaults.
type Options struct {
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

func (o Options) withDefaults() Options {
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 240
	}
	return o
}

type Server struct {
	http.Server

	transactions *services.TransactionService
	categories   *services.CategoryService
	logger       *log.Logger
	rateLimiter  *rateLimiter

	// Per-user caches for the hot read paths. Any mutation for a user
	// invalidates both of that user's entries.
	txnCache *cache.LRUCache[[]core.Transaction]
	catCache *cache.LRUCache[[]core.Category]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, txns *services.TransactionService, cats *services.CategoryService, logger *log.Logger, opts Options) *Server {
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions:     txns,
		categories:       cats,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(opts.RateLimitPerMinute),
		txnCache:         cache.NewLRUCache[[]core.Transaction](opts.CacheSize, opts.CacheTTL),
		catCache:         cache.NewLRUCache[[]core.Category](opts.CacheSize, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /login", s.withCommon(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withCommon(s.handleLogout))
	mux.HandleFunc("GET /session", s.withCommon(s.handleSession))
	mux.HandleFunc("PUT /prefs/theme", s.withCommon(s.handleTheme))

	mux.HandleFunc("GET /transactions", s.withCommon(s.requireUser(s.handleListTransactions)))
	mux.HandleFunc("POST /transactions", s.withCommon(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /transactions/{id}", s.withCommon(s.requireUser(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.withCommon(s.requireUser(s.handleDeleteTransaction)))
	mux.HandleFunc("DELETE /transactions", s.withCommon(s.requireUser(s.handleDeleteAllTransactions)))

	mux.HandleFunc("GET /categories", s.withCommon(s.requireUser(s.handleListCategories)))
	mux.HandleFunc("GET /categories/suggestions", s.withCommon(s.requireUser(s.handleSuggestions)))
	mux.HandleFunc("POST /categories", s.withCommon(s.requireUser(s.handleCreateCategory)))
	mux.HandleFunc("POST /categories/seed", s.withCommon(s.requireUser(s.handleSeedCategories)))
	mux.HandleFunc("PUT /categories/{id}", s.withCommon(s.requireUser(s.handleRenameCategory)))
	mux.HandleFunc("DELETE /categories/{id}", s.withCommon(s.requireUser(s.handleDeleteCategory)))

	mux.HandleFunc("GET /dashboard", s.withCommon(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("GET /reports", s.withCommon(s.requireUser(s.handleReports)))
	mux.HandleFunc("GET /reports/export.csv", s.withCommon(s.requireUser(s.handleExportCSV)))
	mux.HandleFunc("GET /reports/export.pdf", s.withCommon(s.requireUser(s.handleExportPDF)))

	return s
}

// startCacheCleanup runs periodic cleanup for both caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			txnCleaned := s.txnCache.CleanExpired()
			catCleaned := s.catCache.CleanExpired()
			if txnCleaned > 0 || catCleaned > 0 {
				s.logger.Debug("Cache cleanup completed",
					"txn_entries_removed", txnCleaned,
					"cat_entries_removed", catCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateUser drops both cached read sets for a user after any mutation.
func (s *Server) invalidateUser(user string) {
	s.txnCache.Delete(user)
	s.catCache.Delete(user)
}

// withCommon adds security headers, rate limiting, a request id and request
// logging around a handler.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, please try again later"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(perMinute int) *rateLimiter {
	rl := &rateLimiter{
		limit:       perMinute,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= rl.limit
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
