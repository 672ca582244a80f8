package opensky

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/pkg/metrics"
)

// Positions of the state vector fields in an OpenSky "states" record.
const (
	idxICAO24 = iota
	idxCallsign
	idxOriginCountry
	idxTimePosition
	idxLastContact
	idxLongitude
	idxLatitude
	idxBaroAltitude
	idxOnGround
	idxVelocity
	idxTrueTrack
	idxVerticalRate
	idxSensors
	idxGeoAltitude
	idxSquawk
	idxSPI
	idxPositionSource
	idxCategory

	// baseFields is the record length without the extended category.
	baseFields = idxCategory
)

type statesResponse struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}

// decodeStates parses a /states/all body. Records that are too short or
// lack an icao24 are skipped and counted. A body with no usable record is
// domain.ErrEmptyResult.
func decodeStates(body []byte) (*domain.FlightStateCollection, error) {
	var raw statesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.UpstreamUnavailableError{
			Reason: domain.ReasonMalformed,
			Err:    fmt.Errorf("decode states: %w", err),
		}
	}
	if len(raw.States) == 0 {
		return nil, domain.ErrEmptyResult
	}

	flights := make([]domain.FlightState, 0, len(raw.States))
	for _, rec := range raw.States {
		f, ok := decodeRecord(rec)
		if !ok {
			continue
		}
		flights = append(flights, f)
	}
	if skipped := len(raw.States) - len(flights); skipped > 0 {
		metrics.UpstreamRecordsSkipped.Add(float64(skipped))
		slog.Debug("skipped unusable state vectors", "skipped", skipped, "received", len(raw.States))
	}
	if len(flights) == 0 {
		return nil, domain.ErrEmptyResult
	}

	return &domain.FlightStateCollection{
		ObservedAtEpochMillis: raw.Time * 1000,
		Flights:               flights,
	}, nil
}

func decodeRecord(rec []any) (domain.FlightState, bool) {
	if len(rec) < baseFields {
		return domain.FlightState{}, false
	}
	icao, ok := rec[idxICAO24].(string)
	if !ok || icao == "" {
		return domain.FlightState{}, false
	}

	f := domain.FlightState{
		ICAO24:         icao,
		Callsign:       optString(rec[idxCallsign]),
		OriginCountry:  str(rec[idxOriginCountry]),
		TimePosition:   optInt(rec[idxTimePosition]),
		LastContact:    integer(rec[idxLastContact]),
		Longitude:      optFloat(rec[idxLongitude]),
		Latitude:       optFloat(rec[idxLatitude]),
		BaroAltitude:   optFloat(rec[idxBaroAltitude]),
		OnGround:       boolean(rec[idxOnGround]),
		Velocity:       optFloat(rec[idxVelocity]),
		TrueTrack:      optFloat(rec[idxTrueTrack]),
		VerticalRate:   optFloat(rec[idxVerticalRate]),
		Sensors:        ints(rec[idxSensors]),
		GeoAltitude:    optFloat(rec[idxGeoAltitude]),
		Squawk:         optString(rec[idxSquawk]),
		SPI:            boolean(rec[idxSPI]),
		PositionSource: domain.PositionSource(integer(rec[idxPositionSource])),
	}
	if len(rec) > idxCategory {
		f.Category = domain.AircraftCategory(integer(rec[idxCategory]))
	}
	return f, true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func optFloat(v any) *float64 {
	n, ok := v.(float64)
	if !ok {
		return nil
	}
	return &n
}

func optInt(v any) *int64 {
	n, ok := v.(float64)
	if !ok {
		return nil
	}
	i := int64(n)
	return &i
}

func integer(v any) int64 {
	n, _ := v.(float64)
	return int64(n)
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

func ints(v any) []int {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(arr))
	for _, e := range arr {
		if n, ok := e.(float64); ok {
			out = append(out, int(n))
		}
	}
	return out
}
