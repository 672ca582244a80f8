package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/skyglass/internal/adapters/http"
	natsadapter "github.com/samirrijal/skyglass/internal/adapters/nats"
	"github.com/samirrijal/skyglass/internal/adapters/opensky"
	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/core/usecases"
	"github.com/samirrijal/skyglass/internal/pkg/config"
	"github.com/samirrijal/skyglass/internal/pkg/logging"
	"github.com/samirrijal/skyglass/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("skyglass-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// OpenSky
	provider := opensky.NewClient(opensky.Config{
		BaseURL:         cfg.Upstream.BaseURL,
		Timeout:         cfg.Upstream.Timeout(),
		Username:        cfg.Upstream.Username,
		Password:        cfg.Upstream.Password,
		Extended:        cfg.Upstream.Extended,
		RatePerSecond:   cfg.Upstream.RatePerSecond,
		Burst:           cfg.Upstream.Burst,
		BreakerFailures: uint32(cfg.Upstream.BreakerFailures),
		BreakerOpen:     time.Duration(cfg.Upstream.BreakerOpenSeconds) * time.Second,
	})

	// Use cases
	resolver := usecases.NewRegionResolver(usecases.RegionConfig{
		DefaultCenter: domain.GeoPoint{Lat: cfg.Region.DefaultLat, Lon: cfg.Region.DefaultLon},
		PointDelta:    cfg.Region.PointDelta,
		DefaultDelta:  cfg.Region.DefaultDelta,
		Strict:        cfg.Region.Strict,
	})
	opts := []usecases.Option{usecases.WithAlwaysFallback(cfg.Fallback.Always)}

	deps := &http.Dependencies{
		Upstream: provider,
		Cache: http.CacheDirective{
			SMaxAge:              cfg.Cache.SMaxAge,
			StaleWhileRevalidate: cfg.Cache.StaleWhileRevalidate,
		},
		Version: version,
	}

	// NATS emergency alerts (optional)
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("nats unavailable, emergency alerts disabled", "error", err)
		} else {
			defer pub.Close()
			opts = append(opts, usecases.WithAlerts(pub))
			deps.Alerts = pub
		}
	}

	deps.Flights = usecases.NewFlightService(resolver, provider, usecases.NewFallbackGenerator(), opts...)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // GraphQL queries only
		AppName:      "Skyglass API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "X-Flight-Source, ETag, Deprecation, Sunset, Link",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	routeOpts := http.DefaultRouteOptions()
	routeOpts.RequestTimeout = time.Duration(cfg.Server.RequestTimeout) * time.Second
	http.SetupRoutes(app, deps, routeOpts)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting",
			"addr", addr,
			"upstream", cfg.Upstream.BaseURL,
			"strict_region", cfg.Region.Strict,
			"always_fallback", cfg.Fallback.Always,
		)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
