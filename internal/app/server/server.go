// Package server composes the API runtime: storage, auth, AI, and HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/ai"
	"github.com/wavezly/wavezly/internal/api"
	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/platform/timeouts"
	"github.com/wavezly/wavezly/internal/storage/sqlite"
)

// Config holds API runtime configuration. Key material comes from the
// auth and agency env loaders rather than fields here.
type Config struct {
	Addr           string        `env:"WAVEZLY_HTTP_ADDR" envDefault:":8080"`
	DBPath         string        `env:"WAVEZLY_DB_PATH" envDefault:"data/wavezly.db"`
	SessionTTL     time.Duration `env:"WAVEZLY_SESSION_TTL" envDefault:"12h"`
	LoginRateLimit int           `env:"WAVEZLY_LOGIN_RATE_LIMIT" envDefault:"5"`
	AIRateLimit    int           `env:"WAVEZLY_AI_RATE_LIMIT" envDefault:"30"`
	SweepInterval  time.Duration `env:"WAVEZLY_SWEEP_INTERVAL" envDefault:"5m"`
}

// Server hosts the API over HTTP.
type Server struct {
	cfg          Config
	listener     net.Listener
	httpServer   *http.Server
	store        *sqlite.Store
	sessions     *auth.SessionStore
	loginLimiter *auth.Limiter
	aiLimiter    *auth.Limiter
}

// New builds a configured server listening on cfg.Addr.
func New(cfg Config) (*Server, error) {
	csrf, err := auth.LoadCSRFSignerFromEnv()
	if err != nil {
		return nil, fmt.Errorf("configure csrf signer: %w", err)
	}
	grantCfg, err := agency.LoadGrantConfigFromEnv(nil)
	if err != nil {
		return nil, fmt.Errorf("configure invite grants: %w", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var invoker ai.Invoker
	if aiCfg, err := ai.LoadClientConfigFromEnv(); err != nil {
		log.Printf("ai provider disabled: %v", err)
	} else {
		invoker = ai.NewClient(aiCfg)
	}

	sessions := auth.NewSessionStore(cfg.SessionTTL)
	loginLimiter := auth.NewLimiter(cfg.LoginRateLimit, time.Minute)
	aiLimiter := auth.NewLimiter(cfg.AIRateLimit, time.Minute)

	handler := api.New(api.Config{
		Store:        store,
		Sessions:     sessions,
		CSRF:         csrf,
		Invoker:      invoker,
		GrantCfg:     grantCfg,
		ResetCfg:     auth.LoadResetConfigFromEnv(),
		LoginLimiter: loginLimiter,
		AILimiter:    aiLimiter,
	})

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		storeErr := store.Close()
		if storeErr != nil {
			log.Printf("close store: %v", storeErr)
		}
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	httpServer := &http.Server{
		Handler:           otelhttp.NewHandler(handler.Routes(), "wavezly.api"),
		ReadHeaderTimeout: timeouts.ReadHeader,
		ReadTimeout:       timeouts.Request,
		WriteTimeout:      timeouts.Request,
	}

	return &Server{
		cfg:          cfg,
		listener:     listener,
		httpServer:   httpServer,
		store:        store,
		sessions:     sessions,
		loginLimiter: loginLimiter,
		aiLimiter:    aiLimiter,
	}, nil
}

// Addr reports the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run creates and serves the API until the context ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the HTTP server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("api listening at %v", s.listener.Addr())

	group, sweepCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.sessions.Run(sweepCtx, s.cfg.SweepInterval)
		return nil
	})
	group.Go(func() error {
		s.loginLimiter.Run(sweepCtx, s.cfg.SweepInterval)
		return nil
	})
	group.Go(func() error {
		s.aiLimiter.Run(sweepCtx, s.cfg.SweepInterval)
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer shutdownCancel()
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("http shutdown: %v", shutdownErr)
		}
		err = handleErr(<-serveErr)
	case e := <-serveErr:
		err = handleErr(e)
	}

	cancel()
	_ = group.Wait()

	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close store: %w", closeErr)
	}
	return err
}
