package natsadapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

// DefaultSubjectPrefix is prepended to every alert subject.
const DefaultSubjectPrefix = "skyglass.alerts"

// Alert is the payload published for a live emergency squawk.
type Alert struct {
	ICAO24                string   `json:"icao24"`
	Callsign              string   `json:"callsign,omitempty"`
	OriginCountry         string   `json:"origin_country"`
	Squawk                string   `json:"squawk"`
	Latitude              *float64 `json:"latitude"`
	Longitude             *float64 `json:"longitude"`
	BaroAltitude          *float64 `json:"baro_altitude"`
	OnGround              bool     `json:"on_ground"`
	ObservedAtEpochMillis int64    `json:"observed_at_epoch_millis"`
}

// Publisher implements ports.AlertPublisher over core NATS. Publishing
// only appends to the connection's outbound buffer.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	owned  bool
}

// Connect dials NATS, retrying in the background if the server is not up yet.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("skyglass"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// NewPublisher connects to url and publishes under prefix.
func NewPublisher(url, prefix string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	p := NewPublisherWithConn(conn, prefix)
	p.owned = true
	return p, nil
}

// NewPublisherWithConn publishes on an existing connection. Close leaves
// the connection open.
func NewPublisherWithConn(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an alert for squawk is published on.
func Subject(prefix, squawk string) string {
	return prefix + ".squawk." + squawk
}

// PublishEmergency publishes f on <prefix>.squawk.<code>. The Nats-Msg-Id
// header lets JetStream consumers drop repeats of the same observation.
func (p *Publisher) PublishEmergency(ctx context.Context, f domain.FlightState, observedAtMillis int64) error {
	alert := Alert{
		ICAO24:                f.ICAO24,
		OriginCountry:         f.OriginCountry,
		Squawk:                f.SquawkCode(),
		Latitude:              f.Latitude,
		Longitude:             f.Longitude,
		BaroAltitude:          f.BaroAltitude,
		OnGround:              f.OnGround,
		ObservedAtEpochMillis: observedAtMillis,
	}
	if f.Callsign != nil {
		alert.Callsign = *f.Callsign
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	msg := nats.NewMsg(Subject(p.prefix, alert.Squawk))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, f.ICAO24+"-"+strconv.FormatInt(observedAtMillis, 10))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Connected reports whether the connection is currently up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains the connection if the publisher opened it.
func (p *Publisher) Close() {
	if p.owned {
		_ = p.conn.Drain()
	}
}
