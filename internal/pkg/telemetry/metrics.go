package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span and attribute names used when tracing provider calls.
const (
	SpanFetchStates = "opensky.states"

	AttrLatMin      = attribute.Key("skyglass.box.lamin")
	AttrLonMin      = attribute.Key("skyglass.box.lomin")
	AttrLatMax      = attribute.Key("skyglass.box.lamax")
	AttrLonMax      = attribute.Key("skyglass.box.lomax")
	AttrStatus      = attribute.Key("http.response.status_code")
	AttrFlights     = attribute.Key("skyglass.flights")
	AttrFailureKind = attribute.Key("skyglass.upstream.failure")
)
