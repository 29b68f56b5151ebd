package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/pagegate/internal/db"
	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/server/ratelimit"
	"github.com/jonathan/pagegate/internal/types"
)

// VerdictStore persists verdicts for later audit. *db.DB satisfies it.
type VerdictStore interface {
	SaveVerdict(ctx context.Context, source string, v *types.Verdict, categories map[string]string) (uuid.UUID, error)
	GetVerdict(ctx context.Context, id uuid.UUID) (*db.VerdictRecord, error)
	ListVerdicts(ctx context.Context, opts db.ListOptions) ([]db.VerdictRecord, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	pipeline       *pipeline.Pipeline
	deploy         *pipeline.Pipeline
	store          VerdictStore
	rateLimiter    *ratelimit.Limiter
	maxConcurrency int
	verbose        bool
}

// Config holds server configuration
type Config struct {
	Addr           string
	Pipeline       *pipeline.Pipeline
	Deploy         *pipeline.Pipeline // serves /validate/deploy; defaults to Pipeline
	Store          VerdictStore // nil disables verdict storage
	RateLimit      int          // rendering requests per minute per client; 0 disables limiting
	RateBurst      int
	MaxConcurrency int // parallel validations per batch request
	Verbose        bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("server requires a pipeline")
	}

	deploy := cfg.Deploy
	if deploy == nil {
		deploy = cfg.Pipeline
	}

	s := &Server{
		pipeline:       cfg.Pipeline,
		deploy:         deploy,
		store:          cfg.Store,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.RateLimit, cfg.RateBurst)),
		maxConcurrency: cfg.MaxConcurrency,
		verbose:        cfg.Verbose,
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /validate/quick", s.handleValidateQuick)
	mux.HandleFunc("POST /validate/deploy", s.handleValidateDeploy)
	mux.HandleFunc("POST /validate/stream", s.handleValidateStream)
	mux.HandleFunc("POST /validate/batch", s.handleValidateBatch)
	mux.HandleFunc("GET /verdicts", s.handleListVerdicts)
	mux.HandleFunc("GET /verdicts/{id}", s.handleGetVerdict)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for multi-viewport rendering
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errc:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases background resources
func (s *Server) Close() {
	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.rateLimiter = nil
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := s.rateLimiter
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		decision := limiter.Allow(s.extractClientID(r), r.Method, r.URL.Path)
		s.setRateLimitHeaders(w, decision)
		if !decision.Allowed {
			s.rateLimitResponse(w, decision)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.verbose {
			log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		}
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": s.store != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Decision) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Decision) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetAt.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(math.Ceil(info.RetryAfter.Seconds()))
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetAt.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
