// Command squawkwatch logs the emergency squawk alerts published by the API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/skyglass/internal/adapters/nats"
	"github.com/samirrijal/skyglass/internal/pkg/config"
	"github.com/samirrijal/skyglass/internal/pkg/geospatial"
	"github.com/samirrijal/skyglass/internal/pkg/logging"
)

// repeatWindow suppresses re-logging the same aircraft and code while it
// keeps squawking.
const repeatWindow = 5 * time.Minute

func main() {
	cfg, err := config.Load("skyglass-squawkwatch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.NATS.URL == "" {
		log.Fatal("nats.url is required (SKYGLASS_NATS_URL)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := natsadapter.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	// Subscription callbacks run one at a time, so the filter needs no lock.
	repeats := newRepeatFilter(repeatWindow.Milliseconds())

	sub := natsadapter.NewSubscriber(nc, cfg.NATS.SubjectPrefix)
	err = sub.SubscribeEmergencies(ctx, func(ctx context.Context, a natsadapter.Alert) error {
		if !repeats.first(a.ICAO24+"/"+a.Squawk, a.ObservedAtEpochMillis) {
			return nil
		}

		attrs := []any{
			"icao24", a.ICAO24,
			"callsign", a.Callsign,
			"squawk", a.Squawk,
			"origin_country", a.OriginCountry,
			"latitude", deref(a.Latitude),
			"longitude", deref(a.Longitude),
			"baro_altitude", deref(a.BaroAltitude),
			"on_ground", a.OnGround,
			"observed_at", time.UnixMilli(a.ObservedAtEpochMillis).UTC(),
		}
		if a.Latitude != nil && a.Longitude != nil {
			attrs = append(attrs, "distance_km",
				geospatial.Haversine(cfg.Region.DefaultLat, cfg.Region.DefaultLon, *a.Latitude, *a.Longitude)/1000)
		}
		slog.Warn("emergency squawk", attrs...)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	slog.Info("watching emergency squawks", "nats", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("received signal, shutting down", "signal", sig.String())
}

// deref returns nil for an unknown value.
func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
