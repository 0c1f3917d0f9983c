package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/go2048/internal/config"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
	"github.com/mitchelldurbincs/go2048/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/go2048/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/go2048/internal/history"
	"github.com/mitchelldurbincs/go2048/internal/logging"
	"github.com/mitchelldurbincs/go2048/internal/monitoring"
	"github.com/mitchelldurbincs/go2048/internal/transport/mcp"
	"github.com/mitchelldurbincs/go2048/internal/transport/websocket"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The gRPC port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	httpPort := flag.Int("http-port", -1, "The HTTP port for /ws and /mcp (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Maximum concurrent games (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	// A missing .env is fine
	_ = godotenv.Load()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	// Flags override the config file, including across reloads
	if *port != -1 {
		config.Set("server.grpc.port", *port)
	}
	if *host != "" {
		config.Set("server.grpc.host", *host)
		config.Set("server.http.host", *host)
	}
	if *httpPort != -1 {
		config.Set("server.http.port", *httpPort)
	}
	if *logLevel != "" {
		config.Set("logging.level", *logLevel)
	}
	if *maxGames != -1 {
		config.Set("server.grpc.max_games", *maxGames)
	}
	if *enableReflection {
		config.Set("server.grpc.enable_reflection", true)
	}
	cfg := config.Get()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid command line override")
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Info().Str("config_file", config.ConfigFilePath()).Msg("Config loaded")

	// Only the log level is applied live; everything else needs a restart
	config.WatchConfig(func(c *config.Config) {
		logging.SetLevel(c.Logging.Level)
		log.Info().
			Str("config_file", config.ConfigFilePath()).
			Str("level", c.Logging.Level).
			Msg("Config reloaded")
	})

	if err := run(cfg, logger); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server shutdown complete")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := history.NewStore(history.ConfigFromSettings(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	bus := events.NewEventBus(logger)
	eventLog := subscribers.NewLoggerSubscriber("server_events", logger, zerolog.DebugLevel)
	eventLog.SetEventFilter([]string{events.TypeGameStarted, events.TypeGameEnded})
	bus.Subscribe(eventLog)

	gameManager := gameserver.NewGameManager(gameserver.ManagerConfigFromSettings(cfg), store, bus, logger)
	go gameManager.Run(ctx)

	if cfg.Monitoring.Enabled {
		monitor := monitoring.NewMonitor(monitoring.Config{Interval: cfg.Monitoring.Interval}, gameManager, logger)
		go monitor.Run(ctx)
	}

	log.Info().
		Int("port", cfg.Server.GRPC.Port).
		Str("host", cfg.Server.GRPC.Host).
		Int("max_games", cfg.Server.GRPC.MaxGames).
		Str("default_player", cfg.Server.Games.Player).
		Msg("Starting gRPC game server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.GRPC.Host, cfg.Server.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(gameserver.ServerOptions(logger)...)
	gameserver.RegisterGameServiceServer(grpcServer, gameserver.NewServer(gameManager, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Server.GRPC.EnableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	var httpServer *http.Server
	if cfg.Server.HTTP.Enabled {
		hub := websocket.NewHub(logger)
		go hub.Run(ctx)
		defer hub.Subscribe(bus)()

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		mux.Handle("/mcp", mcp.NewServer(gameManager, logger))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "ok %d games\n", gameManager.GetActiveGames())
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
		httpServer = &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info().
				Str("address", addr).
				Str("websocket", "/ws?game=<game_id>").
				Str("mcp", "/mcp").
				Msg("HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP server failed")
				cancel()
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("Received shutdown signal")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Give ongoing requests time to complete
	time.Sleep(time.Duration(cfg.Server.GRPC.GracefulShutdownDelay) * time.Second)

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown")
		}
	}

	log.Info().Msg("Gracefully stopping gRPC server")
	grpcServer.GracefulStop()
	return nil
}
