package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-regform/components/countries"
	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/render"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/validation"
	"github.com/goliatone/go-regform/pkg/views"
)

// DefaultUploadLimit caps picture uploads when no limit is configured.
const DefaultUploadLimit = int64(5 << 20)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and store updates.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValidator overrides the validation schema shared by every controller.
func WithValidator(v validation.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithRenderers replaces the page renderers. The registry fallback serves
// requests whose Accept header matches no renderer.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		s.renderers = registry
	}
}

// WithUploadLimit caps the size of uploaded pictures in bytes.
func WithUploadLimit(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.uploadLimit = limit
		}
	}
}

// WithThemeVariant selects the theme variant used when a request does not
// ask for one.
func WithThemeVariant(variant string) Option {
	return func(s *Server) {
		s.themeVariant = variant
	}
}

// WithAllowedOrigins enables CORS for the JSON endpoints.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append([]string(nil), origins...)
	}
}

// Server wires the store, the controllers and the renderers into an HTTP
// handler.
type Server struct {
	logger       *zap.Logger
	store        *store.Store
	validator    validation.Validator
	renderers    *render.Registry
	images       *store.ImageLoader
	sessions     *Sessions
	sanitizer    *bluemonday.Policy
	uploadLimit  int64
	themeVariant string
	origins      []string
	unsubscribe  func()
}

// New builds a server around st.
func New(st *store.Store, options ...Option) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("server: store is nil")
	}
	s := &Server{
		logger:      zap.NewNop(),
		store:       st,
		validator:   validation.New(),
		sanitizer:   bluemonday.StrictPolicy(),
		uploadLimit: DefaultUploadLimit,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.renderers == nil {
		registry, err := defaultRenderers()
		if err != nil {
			return nil, err
		}
		s.renderers = registry
	}

	s.images = store.NewImageLoader(st, store.WithNotify(s.logLoad))
	s.sessions = NewSessions(func() map[form.Variant]form.Controller {
		return map[form.Variant]form.Controller{
			form.VariantManual:    form.NewManual(s.validator, st, form.WithImageLoader(s.images)),
			form.VariantDelegated: form.NewDelegated(s.validator, st, form.WithImageLoader(s.images)),
		}
	})
	s.unsubscribe = st.Subscribe(func(action store.Action, state store.State) {
		s.logger.Info("store updated",
			zap.String("action", string(action)),
			zap.Bool("has_data", state.FormData != nil),
			zap.Bool("has_image", state.FormImage != nil),
			zap.Int("countries", len(state.Countries)))
	})
	return s, nil
}

func defaultRenderers() (*render.Registry, error) {
	html, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(render.JSONRenderer{}); err != nil {
		return nil, err
	}
	return registry, nil
}

// Sessions exposes the session registry, mostly for tests.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Images exposes the shared picture loader.
func (s *Server) Images() *store.ImageLoader { return s.images }

// Close stops logging store updates and waits for pending picture loads.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.images.Wait()
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/openapi.json", s.handleOpenAPI)
	if _, err := countries.RegisterRoutes(r, "/", countries.WithSource(func() []model.Country {
		return store.SelectCountries(s.store.State())
	})); err != nil {
		s.logger.Error("mount countries", zap.Error(err))
	}
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(views.AssetsFS()))))

	r.Get("/", s.handleLanding)
	r.Route("/{form}", func(r chi.Router) {
		r.Get("/", s.handleForm)
		r.Post("/", s.handleSubmit)
		r.Post("/fields/{field}", s.handleField)
		r.Post("/picture", s.handlePicture)
	})
	return r
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) logLoad(result store.LoadResult) {
	switch {
	case result.Stale:
		s.logger.Debug("stale picture load discarded", zap.Uint64("token", uint64(result.Token)))
	case result.Err != nil:
		s.logger.Warn("picture load failed", zap.Uint64("token", uint64(result.Token)), zap.Error(result.Err))
	default:
		s.logger.Debug("picture loaded", zap.Uint64("token", uint64(result.Token)), zap.Bool("applied", result.Applied))
	}
}
