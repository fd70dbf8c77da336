package in

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dsaboost/internal/modules/functions/domain"
	functionsin "dsaboost/internal/modules/functions/port/in"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/ratelimit"
)

const maxBodyBytes = 1 << 20

type ServerOptions struct {
	AnonKey string
	// Limiter throttles calls per client address; nil disables it.
	Limiter *ratelimit.KeyedRateLimiter
	Logger  *slog.Logger
}

// Server exposes the hosted functions at POST /functions/v1/{name}.
type Server struct {
	host   functionsin.Host
	opts   ServerOptions
	router chi.Router
}

func NewServer(host functionsin.Host, opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With("component", "function-host")
	s := &Server{host: host, opts: opts, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Route("/functions/v1", func(r chi.Router) {
		r.Use(s.requireAnonKey)
		r.Use(s.rateLimit)
		r.Post("/{name}", s.invoke)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("function host listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireAnonKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AnonKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.Header.Get("Apikey")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.AnonKey)) != 1 {
			writeEnvelope(w, http.StatusUnauthorized, nil, errors.New("missing or invalid api key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Limiter != nil && !s.opts.Limiter.Allow(clientKey(r)) {
			writeEnvelope(w, http.StatusTooManyRequests, nil, apperrors.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		data any
		err  error
	)
	switch name {
	case domain.FunctionChat:
		var req domain.ChatRequest
		if err = decode(r, &req); err == nil {
			data, err = s.host.Chat(r.Context(), req)
		}
	case domain.FunctionEmail:
		var req domain.EmailRequest
		if err = decode(r, &req); err == nil {
			data, err = s.host.SendEmail(r.Context(), req)
		}
	default:
		err = fmt.Errorf("%w: %s", apperrors.ErrUnknownFunction, name)
	}
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.opts.Logger.Error("function failed", "function", name, "request_id", middleware.GetReqID(r.Context()), "error", err)
		}
		writeEnvelope(w, status, nil, err)
		return
	}
	writeEnvelope(w, http.StatusOK, data, nil)
}

func decode(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnknownFunction):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeEnvelope(w http.ResponseWriter, status int, data any, err error) {
	env := domain.Envelope{}
	if err != nil {
		env.Error = err.Error()
	} else if data != nil {
		raw, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			status = http.StatusInternalServerError
			env.Error = marshalErr.Error()
		} else {
			env.Data = raw
		}
	}
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
