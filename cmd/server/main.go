package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"relic-hunt/internal/config"
	"relic-hunt/internal/game"
	"relic-hunt/internal/physics"
	"relic-hunt/internal/transport/ws"
	"relic-hunt/internal/world"
)

// sessionTimeout — простой клиента, после которого жнец убирает сессию.
const sessionTimeout = 2 * time.Minute

func setupLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch strings.ToUpper(level) {
	case "TRACE":
		logLevel = zerolog.TraceLevel
	case "DEBUG":
		logLevel = zerolog.DebugLevel
	case "INFO":
		logLevel = zerolog.InfoLevel
	case "WARN":
		logLevel = zerolog.WarnLevel
	case "ERROR":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Логгер ещё не настроен — конфигурация определяет его уровень
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg.Log.Level)
	logger.Info().Str("addr", cfg.Server.Addr).Int("tps", cfg.Simulation.TPS).Msg("starting relic-hunt server")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Проверяем доступность окружения до приёма клиентов: без облака
	// точек памятника сцена не имеет смысла
	assets := &world.AssetLoader{
		Primary:    cfg.Assets.Environment,
		Fallback:   cfg.Assets.Fallback,
		Attempts:   cfg.Assets.Retries,
		RetryDelay: cfg.Assets.RetryDelay,
		Logger:     logger.With().Str("component", "assets").Logger(),
	}
	environmentPath, err := assets.Resolve(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("environment asset unavailable")
	}
	logger.Info().Str("path", environmentPath).Msg("environment asset resolved")

	w, err := world.Build(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build world")
	}

	tunables := world.TunablesFromConfig(cfg)
	integrator := physics.NewIntegrator(tunables)
	resolver := physics.NewResolver(tunables, w.Colliders())
	raycaster := physics.NewRaycaster(resolver.GroundLevel(), w.Targets())

	restoreSavedTransform(cfg.Server.SavePath, w, resolver, raycaster, logger)

	ticker := game.NewGameTicker(cfg.Simulation.TPS, logger)
	server := ws.NewWSServer(ticker, w, resolver, raycaster, cfg.Server.SavePath, logger)

	targetingLogger := logger.With().Str("component", "targeting").Logger()
	reaperLogger := logger.With().Str("component", "reaper").Logger()

	ticker.RegisterSystem(game.NewSimulationSystem(ticker, integrator, resolver))
	ticker.RegisterSystem(game.NewTargetingSystem(ticker, raycaster, tunables,
		mgl64.DegToRad(cfg.Camera.FOVDegrees), cfg.Camera.Aspect, server, targetingLogger))
	ticker.RegisterSystem(game.NewBroadcastSystem(ticker, server))
	ticker.RegisterSystem(game.NewSessionReaperSystem(ticker, sessionTimeout, server.DropSession, reaperLogger))

	ticker.Start()
	defer ticker.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/debug/stats", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(ticker.Stats()); err != nil {
			logger.Debug().Err(err).Msg("stats encode failed")
		}
	})
	mux.HandleFunc("/assets/environment", func(rw http.ResponseWriter, r *http.Request) {
		http.ServeFile(rw, r, environmentPath)
	})
	fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
	mux.Handle("/", fs)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}

// restoreSavedTransform применяет сохранённое положение манипулируемого
// объекта, если файл сохранения есть. Отсутствие файла — не ошибка.
func restoreSavedTransform(path string, w *world.World, resolver *physics.Resolver, raycaster *physics.Raycaster, logger zerolog.Logger) {
	if path == "" {
		return
	}
	saved, err := world.LoadTransform(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", path).Msg("ignoring unreadable save file")
		}
		return
	}

	if err := w.MoveObject(saved.ObjectID, saved.Vec3()); err != nil {
		logger.Warn().Err(err).Str("object", saved.ObjectID).Msg("saved transform does not apply")
		return
	}
	resolver.MoveObstacle(saved.ObjectID, saved.Vec3())
	raycaster.SetTargets(w.Targets())
	logger.Info().Str("object", saved.ObjectID).Msg("restored saved transform")
}
