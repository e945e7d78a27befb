// Package http exposes the activity engine's derived views as a JSON API.
// Rendering belongs to the consuming frontend; this layer only serializes
// what the engine computed.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"garagelog/internal/activity"
	"garagelog/internal/core"
	"garagelog/internal/log"
)

// ActivityProvider is the service surface the handlers need.
type ActivityProvider interface {
	Calendar(ctx context.Context, year int) (*activity.YearGrid, error)
	Streaks(ctx context.Context, end activity.Day, window int) (activity.StreakStats, error)
	DaySummary(ctx context.Context, date activity.Day) (*core.DaySummary, error)
	RecordContribution(ctx context.Context, rec core.ContributionRecord) (string, error)
	RecordContractorWork(ctx context.Context, w core.ContractorWork) (string, error)
	RecordTimelineEvent(ctx context.Context, ev core.TimelineEvent, labor []core.LaborLine, parts []core.PartLine) (string, error)
}

type Server struct {
	http.Server

	provider    ActivityProvider
	logger      *log.Logger
	rateLimiter *rateLimiter
}

// NewServer builds the API server with routing, logging middleware, and
// per-client rate limiting.
func NewServer(addr string, provider ActivityProvider, logger *log.Logger, ratePerMin int) *Server {
	s := &Server{
		provider:    provider,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(ratePerMin),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/activity/calendar", s.handleCalendar)
	mux.HandleFunc("/api/activity/streaks", s.handleStreaks)
	mux.HandleFunc("/api/activity/day", s.handleDay)
	mux.HandleFunc("/api/contributions", s.handleContributions)
	mux.HandleFunc("/api/work", s.handleContractorWork)
	mux.HandleFunc("/api/events", s.handleTimelineEvents)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        log.Middleware(s.logger)(s.limit(mux)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Simple in-memory per-client rate limiter with a one-minute window.
type rateLimiter struct {
	mu           sync.Mutex
	perMinute    int
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newRateLimiter(perMinute int) *rateLimiter {
	rl := &rateLimiter{
		perMinute:   perMinute,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[ip]
	if !ok || now.Sub(c.windowStart) >= time.Minute {
		rl.clients[ip] = &clientInfo{windowStart: now, requests: 1}
		return true
	}
	c.requests++
	return c.requests <= rl.perMinute
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
	for ip, c := range rl.clients {
		if c.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
