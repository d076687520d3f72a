// Package api provides the HTTP server for FARMA.
//
// It exposes the chat endpoint used by the web client, the Twilio SMS
// webhook, a health check, and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/LikhithKalle/FARMA-Project/internal/store"
	"github.com/LikhithKalle/FARMA-Project/internal/twiliosms"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default API server configuration
const (
	// DefaultAddr is the listen address used when none is configured
	DefaultAddr = ":8080"
	// DefaultRequestTimeout bounds the handling of a single request
	DefaultRequestTimeout = 30 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second
	// maxBodyBytes caps request bodies
	maxBodyBytes = 64 << 10
)

// Processor runs conversation turns. *flow.Machine implements it.
type Processor interface {
	Process(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
	ProcessChannel(ctx context.Context, key, message, lang string) (models.ChatResponse, error)
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr           string
	RequestTimeout time.Duration
	SMS            twiliosms.Sender
	SMSLanguage    string
	PublicURL      string
	ModelLoaded    bool
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithRequestTimeout sets the per-request timeout. Values <= 0 are ignored.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Opts) {
		if d > 0 {
			o.RequestTimeout = d
		}
	}
}

// WithSMS enables the Twilio SMS webhook. Replies are produced in lang.
func WithSMS(sender twiliosms.Sender, lang string) Option {
	return func(o *Opts) {
		o.SMS = sender
		o.SMSLanguage = lang
	}
}

// WithPublicURL sets the externally visible base URL, e.g.
// "https://farma.example.com". Twilio signs webhooks against the URL it
// was configured with, which differs from the request URL behind a proxy.
func WithPublicURL(base string) Option {
	return func(o *Opts) { o.PublicURL = base }
}

// WithModelLoaded reports whether recommendation artifacts were loaded.
func WithModelLoaded(loaded bool) Option {
	return func(o *Opts) { o.ModelLoaded = loaded }
}

// Server is the FARMA HTTP API.
type Server struct {
	processor Processor
	st        store.Store
	validate  *validator.Validate
	opts      Opts
	http      *http.Server
}

// NewServer creates a Server around the conversation processor and the store.
func NewServer(processor Processor, st store.Store, opts ...Option) *Server {
	cfg := Opts{
		Addr:           DefaultAddr,
		RequestTimeout: DefaultRequestTimeout,
		SMSLanguage:    models.DefaultLanguage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !models.IsValidLanguage(cfg.SMSLanguage) {
		slog.Warn("api.NewServer: unsupported SMS language, using default", "language", cfg.SMSLanguage)
		cfg.SMSLanguage = models.DefaultLanguage
	}

	s := &Server{
		processor: processor,
		st:        st,
		validate:  newValidator(),
		opts:      cfg,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))
		r.Post("/chat", s.chatHandler)
		if s.opts.SMS != nil {
			r.Post("/sms/twilio", s.smsHandler)
		}
	})
	return r
}

// Run serves HTTP until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Run() error {
	slog.Info("Server.Run: FARMA API listening", "addr", s.opts.Addr, "sms", s.opts.SMS != nil)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Server.Shutdown: stopping API server")
	return s.http.Shutdown(ctx)
}
