package natsadapter

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestPublisher_RoundTrip(t *testing.T) {
	ns := runServer(t)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	received := make(chan Alert, 1)
	sub := NewSubscriber(nc, "test.alerts")
	require.NoError(t, sub.SubscribeEmergencies(context.Background(), func(ctx context.Context, a Alert) error {
		received <- a
		return nil
	}))
	defer sub.Close()
	require.NoError(t, nc.Flush())

	pub, err := NewPublisher(ns.ClientURL(), "test.alerts")
	require.NoError(t, err)
	defer pub.Close()

	flight := domain.FlightState{
		ICAO24:        "3b77d2",
		Callsign:      str("MAYDAY"),
		OriginCountry: "France",
		Latitude:      f64(48.77),
		Longitude:     f64(2.37),
		BaroAltitude:  f64(2000),
		Squawk:        str(domain.SquawkEmergency),
	}
	require.NoError(t, pub.PublishEmergency(context.Background(), flight, 1760616000000))

	select {
	case a := <-received:
		assert.Equal(t, "3b77d2", a.ICAO24)
		assert.Equal(t, "MAYDAY", a.Callsign)
		assert.Equal(t, "7700", a.Squawk)
		assert.Equal(t, 48.77, *a.Latitude)
		assert.Equal(t, int64(1760616000000), a.ObservedAtEpochMillis)
	case <-time.After(5 * time.Second):
		t.Fatal("alert not delivered")
	}
	assert.True(t, pub.Connected())
}

func TestPublisher_SubjectAndHeader(t *testing.T) {
	ns := runServer(t)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("skyglass.alerts.squawk.7500")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	pub := NewPublisherWithConn(nc, "")
	require.NoError(t, pub.PublishEmergency(context.Background(),
		domain.FlightState{ICAO24: "abc123", Squawk: str(domain.SquawkHijack)}, 42))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc123-42", msg.Header.Get(nats.MsgIdHdr))

	pub.Close()
	assert.True(t, nc.IsConnected(), "Close must not drain a borrowed connection")
}
