// Package mock serves a stand-in for the graph exploration backend so the
// client can be developed and demonstrated without a database.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"graphchat/internal/client"
	"graphchat/internal/logging"
)

const maxUploadBytes = 512 << 20

// Server is the mock backend.
type Server struct {
	port      int
	extension string
	delay     time.Duration
	sessions  *cache.Cache
	log       *logging.Logger
}

type sessionInfo struct {
	Filename string
	Size     int64
	Created  time.Time
}

// Option configures the server.
type Option func(*Server)

// WithSessionTTL sets how long an idle session stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessions = cache.New(ttl, ttl/2+time.Minute)
	}
}

// WithDelay simulates backend think time before each answer.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithExtension sets the accepted upload suffix.
func WithExtension(ext string) Option {
	return func(s *Server) {
		if ext != "" {
			s.extension = ext
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func NewServer(port int, opts ...Option) *Server {
	s := &Server{
		port:      port,
		extension: ".dump",
		sessions:  cache.New(24*time.Hour, 10*time.Minute),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.healthHandler)
	r.Post("/upload", s.uploadHandler)
	r.Post("/query", s.queryHandler)
	return r
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("mock backend listening", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, client.HealthResponse{Status: "ok"})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, client.ErrorBody{Detail: "No file provided"})
		return
	}
	defer f.Close()

	if !strings.HasSuffix(hdr.Filename, s.extension) {
		writeJSON(w, http.StatusBadRequest, client.ErrorBody{
			Detail: fmt.Sprintf("Only %s files are supported", s.extension),
		})
		return
	}

	id := uuid.NewString()
	s.sessions.SetDefault(id, sessionInfo{Filename: hdr.Filename, Size: hdr.Size, Created: time.Now()})
	s.log.Info("session created", "session_id", id, "file", hdr.Filename, "bytes", hdr.Size)

	writeJSON(w, http.StatusOK, client.UploadResponse{SessionID: id})
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	var req client.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, client.ErrorBody{Detail: "Invalid request body"})
		return
	}

	v, ok := s.sessions.Get(req.SessionID)
	if !ok {
		writeJSON(w, http.StatusOK, client.QueryResponse{
			Success: false,
			Message: "Query failed",
			Error:   "invalid session",
		})
		return
	}
	// Sliding expiry.
	s.sessions.SetDefault(req.SessionID, v)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	writeJSON(w, http.StatusOK, Answer(req.Question, time.Now()))
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	return s.sessions.ItemCount()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
