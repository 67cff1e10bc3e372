package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-station-dashboard/auth"
	"github.com/jrsteele09/go-station-dashboard/auth/loginsession"
	"github.com/jrsteele09/go-station-dashboard/dashboard"
	"github.com/jrsteele09/go-station-dashboard/internal/config"
	"github.com/jrsteele09/go-station-dashboard/internal/jobs"
	"github.com/jrsteele09/go-station-dashboard/internal/logging"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/server"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/jrsteele09/go-station-dashboard/stations/mockapi"
	"github.com/jrsteele09/go-station-dashboard/token"
	"github.com/jrsteele09/go-station-dashboard/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logger := logging.New(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, err := kv.Open(ctx, c)
	if err != nil {
		return fmt.Errorf("open %s store: %w", c.GetStorageBackend(), err)
	}
	defer store.Close()

	authService, err := newAuthService(c, store, logger)
	if err != nil {
		return err
	}

	var mockAPI http.Handler
	if c.GetMockAPIEnabled() {
		mockAPI = mockapi.NewCollection(store).Handler()
	}

	stationsClient, err := stations.NewClient(c.GetStationsAPIURL(),
		stations.WithToken(c.GetStationsAPIToken()),
		stations.WithTimeout(c.GetStationsTimeout()),
		stations.WithLogger(logger.With().Str("component", "stations").Logger()),
	)
	if err != nil {
		return err
	}

	dashboards := dashboard.NewRegistry(func() *dashboard.Controller {
		return dashboard.NewController(stationsClient,
			dashboard.WithPageSize(c.GetStationsPageSize()),
			dashboard.WithLogger(logger.With().Str("component", "dashboard").Logger()),
		)
	})

	handler, err := server.New(c, server.Deps{
		Auth:       authService,
		Dashboards: dashboards,
		MockAPI:    mockAPI,
		Logger:     logger.With().Str("component", "http").Logger(),
	})
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(authService, dashboards, c.GetSessionPurgeSchedule(), c.GetControllerIdleTTL(),
		logger.With().Str("component", "jobs").Logger())
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newAuthService(c config.Config, store kv.Store, logger zerolog.Logger) (*auth.Service, error) {
	secret := []byte(c.GetSessionSecret())
	if len(secret) == 0 {
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
		secret = token.RandomSecret()
	}
	issuer, err := token.NewSessionIssuer(secret, token.WithTTL(c.GetSessionTTL()))
	if err != nil {
		return nil, err
	}

	return auth.NewService(auth.Repos{
		Users:    users.NewKVRepo(store),
		Sessions: loginsession.NewKVRepo(store),
		Store:    store,
	}, issuer,
		auth.WithLogger(logger.With().Str("component", "auth").Logger()),
		auth.WithResetCodeTTL(c.GetResetCodeTTL()),
	)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
