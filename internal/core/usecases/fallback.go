package usecases

import (
	"time"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/pkg/geospatial"
)

// MaxFallbackOffset bounds how far, in degrees, a synthetic flight may sit
// from the query center on either axis.
const MaxFallbackOffset = 0.2

type flightTemplate struct {
	icao24       string
	callsign     string
	country      string
	dLat, dLon   float64
	baroAltitude *float64
	onGround     bool
	velocity     float64
	trueTrack    float64
	verticalRate float64
	squawk       string
	category     domain.AircraftCategory
}

var fallbackTemplates = []flightTemplate{
	{
		icao24: "39c4a1", callsign: "AFR123", country: "France",
		dLat: 0.10, dLon: 0.10, baroAltitude: f64(1200),
		velocity: 142.5, trueTrack: 45, verticalRate: 5.2,
		squawk: "1000", category: domain.CategoryLarge,
	},
	{
		icao24: "3a1f0b", callsign: "SAMU34", country: "France",
		dLat: -0.05, dLon: -0.05, baroAltitude: f64(300),
		velocity: 61.7, trueTrack: 210, verticalRate: 0,
		squawk: "7000", category: domain.CategoryRotorcraft,
	},
	{
		icao24: "3b77d2", callsign: "MAYDAY", country: "France",
		dLat: -0.08, dLon: 0.02, baroAltitude: f64(2000),
		velocity: 118.3, trueTrack: 310, verticalRate: -12.4,
		squawk: domain.SquawkEmergency, category: domain.CategoryLarge,
	},
	{
		icao24: "4d0113", callsign: "CLX8TH", country: "Luxembourg",
		dLat: 0.03, dLon: -0.07, onGround: true,
		velocity: 8.2, trueTrack: 270, verticalRate: 0,
		squawk: "2000", category: domain.CategoryHeavy,
	},
}

// FallbackGenerator synthesizes a small, fixed flight set around a point.
// Output depends only on its inputs.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a new FallbackGenerator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate places every template around center, stamped with seed.
func (g *FallbackGenerator) Generate(center domain.GeoPoint, seed time.Time) domain.FlightStateCollection {
	ts := seed.Unix()
	flights := make([]domain.FlightState, 0, len(fallbackTemplates))

	for _, t := range fallbackTemplates {
		// Offsets that would leave the map are mirrored to the other side of
		// the center, keeping every flight within MaxFallbackOffset.
		lat := geospatial.Offset(center.Lat, t.dLat, -90, 90)
		lon := geospatial.Offset(center.Lon, t.dLon, -180, 180)

		f := domain.FlightState{
			ICAO24:         t.icao24,
			Callsign:       ptr(t.callsign),
			OriginCountry:  t.country,
			TimePosition:   ptr(ts),
			LastContact:    ts,
			Longitude:      ptr(lon),
			Latitude:       ptr(lat),
			OnGround:       t.onGround,
			Velocity:       ptr(t.velocity),
			TrueTrack:      ptr(t.trueTrack),
			VerticalRate:   ptr(t.verticalRate),
			Squawk:         ptr(t.squawk),
			PositionSource: domain.PositionADSB,
			Category:       t.category,
		}
		if t.baroAltitude != nil {
			f.BaroAltitude = ptr(*t.baroAltitude)
			f.GeoAltitude = ptr(*t.baroAltitude + 25)
		}
		flights = append(flights, f)
	}

	return domain.FlightStateCollection{
		ObservedAtEpochMillis: seed.UnixMilli(),
		Flights:               flights,
	}
}

func ptr[T any](v T) *T { return &v }

func f64(v float64) *float64 { return &v }
