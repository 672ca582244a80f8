package domain

// Transponder codes that denote an emergency.
const (
	SquawkHijack       = "7500"
	SquawkRadioFailure = "7600"
	SquawkEmergency    = "7700"
)

// AircraftCategory is the ADS-B emitter category as published by OpenSky.
type AircraftCategory int

const (
	CategoryNoInfo AircraftCategory = iota
	CategoryNoADSBInfo
	CategoryLight
	CategorySmall
	CategoryLarge
	CategoryHighVortexLarge
	CategoryHeavy
	CategoryHighPerformance
	CategoryRotorcraft
	CategoryGlider
	CategoryLighterThanAir
	CategoryParachutist
	CategoryUltralight
	CategoryReserved
	CategoryUAV
	CategorySpaceVehicle
	CategorySurfaceEmergency
	CategorySurfaceService
	CategoryPointObstacle
	CategoryClusterObstacle
	CategoryLineObstacle
)

// PositionSource identifies how a state vector position was obtained.
type PositionSource int

const (
	PositionADSB PositionSource = iota
	PositionASTERIX
	PositionMLAT
	PositionFLARM
)

// FlightState is one observed or synthesized aircraft.
// Pointer fields are nullable on the provider side and stay null here.
type FlightState struct {
	ICAO24         string           `json:"icao24"`
	Callsign       *string          `json:"callsign"`
	OriginCountry  string           `json:"origin_country"`
	TimePosition   *int64           `json:"time_position"`
	LastContact    int64            `json:"last_contact"`
	Longitude      *float64         `json:"longitude"`
	Latitude       *float64         `json:"latitude"`
	BaroAltitude   *float64         `json:"baro_altitude"`
	OnGround       bool             `json:"on_ground"`
	Velocity       *float64         `json:"velocity"`
	TrueTrack      *float64         `json:"true_track"`
	VerticalRate   *float64         `json:"vertical_rate"`
	Sensors        []int            `json:"sensors"`
	GeoAltitude    *float64         `json:"geo_altitude"`
	Squawk         *string          `json:"squawk"`
	SPI            bool             `json:"spi"`
	PositionSource PositionSource   `json:"position_source"`
	Category       AircraftCategory `json:"category"`
}

// SquawkCode returns the transponder code or "" when none was reported.
func (f FlightState) SquawkCode() string {
	if f.Squawk == nil {
		return ""
	}
	return *f.Squawk
}

// IsEmergency reports whether the aircraft squawks 7500, 7600 or 7700.
func (f FlightState) IsEmergency() bool {
	switch f.SquawkCode() {
	case SquawkHijack, SquawkRadioFailure, SquawkEmergency:
		return true
	}
	return false
}

// Position returns the aircraft position, if both coordinates are known.
func (f FlightState) Position() (GeoPoint, bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *f.Latitude, Lon: *f.Longitude}, true
}

// FlightStateCollection is the unit returned to the caller, either fetched
// live or synthesized.
type FlightStateCollection struct {
	ObservedAtEpochMillis int64         `json:"observed_at_epoch_millis"`
	Flights               []FlightState `json:"flights"`
}

// Emergencies returns the flights squawking an emergency code.
func (c FlightStateCollection) Emergencies() []FlightState {
	var out []FlightState
	for _, f := range c.Flights {
		if f.IsEmergency() {
			out = append(out, f)
		}
	}
	return out
}

// FlightSource tells whether a collection came from the provider or from
// the fallback generator.
type FlightSource string

const (
	SourceLive     FlightSource = "live"
	SourceFallback FlightSource = "fallback"
)

// FlightResult is the outcome of one nearby-flights request.
type FlightResult struct {
	Collection FlightStateCollection
	Source     FlightSource
	Region     Region
	// Cause is the upstream failure that triggered the fallback, if any.
	Cause error
}
