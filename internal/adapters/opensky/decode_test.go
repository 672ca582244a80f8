package opensky

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/pkg/metrics"
)

const sampleStates = `{
  "time": 1760616000,
  "states": [
    ["4b1815", "SWR8    ", "Switzerland", 1760615998, 1760615999, 7.4474, 46.9481, 10668.0, false, 231.5, 87.3, -0.33, [1, 2], 10972.8, "1000", false, 0, 4],
    ["3c6444", null, "Germany", null, 1760615990, null, null, null, true, 0.0, null, null, null, null, null, false, 2],
    [null, "NOICAO", "Nowhere", null, 0, 1.0, 2.0, null, false, null, null, null, null, null, null, false, 0],
    ["short", "TOO", "Few"]
  ]
}`

func TestDecodeStates_AllFields(t *testing.T) {
	coll, err := decodeStates([]byte(sampleStates))
	require.NoError(t, err)

	assert.Equal(t, int64(1760616000000), coll.ObservedAtEpochMillis)
	require.Len(t, coll.Flights, 2, "records without icao24 or too short are skipped")

	f := coll.Flights[0]
	assert.Equal(t, "4b1815", f.ICAO24)
	require.NotNil(t, f.Callsign)
	assert.Equal(t, "SWR8    ", *f.Callsign)
	assert.Equal(t, "Switzerland", f.OriginCountry)
	assert.Equal(t, int64(1760615998), *f.TimePosition)
	assert.Equal(t, int64(1760615999), f.LastContact)
	assert.Equal(t, 7.4474, *f.Longitude)
	assert.Equal(t, 46.9481, *f.Latitude)
	assert.Equal(t, 10668.0, *f.BaroAltitude)
	assert.False(t, f.OnGround)
	assert.Equal(t, 231.5, *f.Velocity)
	assert.Equal(t, 87.3, *f.TrueTrack)
	assert.Equal(t, -0.33, *f.VerticalRate)
	assert.Equal(t, []int{1, 2}, f.Sensors)
	assert.Equal(t, 10972.8, *f.GeoAltitude)
	assert.Equal(t, "1000", f.SquawkCode())
	assert.False(t, f.SPI)
	assert.Equal(t, domain.PositionADSB, f.PositionSource)
	assert.Equal(t, domain.CategoryLarge, f.Category)
}

func TestDecodeStates_NullsStayNull(t *testing.T) {
	coll, err := decodeStates([]byte(sampleStates))
	require.NoError(t, err)

	f := coll.Flights[1]
	assert.Nil(t, f.Callsign)
	assert.Nil(t, f.TimePosition)
	assert.Nil(t, f.Longitude)
	assert.Nil(t, f.Latitude)
	assert.Nil(t, f.BaroAltitude)
	assert.Nil(t, f.Squawk)
	assert.Nil(t, f.Sensors)
	assert.True(t, f.OnGround)
	assert.Equal(t, domain.PositionMLAT, f.PositionSource)
	assert.Equal(t, domain.CategoryNoInfo, f.Category, "17-field record has no category")
}

func TestDecodeStates_Empty(t *testing.T) {
	for _, body := range []string{
		`{"time": 1760616000, "states": null}`,
		`{"time": 1760616000, "states": []}`,
		`{"time": 1760616000}`,
		`{"time": 1760616000, "states": [["x"]]}`,
	} {
		_, err := decodeStates([]byte(body))
		assert.ErrorIs(t, err, domain.ErrEmptyResult, body)
	}
}

func TestDecodeStates_Malformed(t *testing.T) {
	_, err := decodeStates([]byte(`<html>rate limited</html>`))

	var unavailable *domain.UpstreamUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ReasonMalformed, unavailable.Reason)
}

func TestDecodeStates_CountsSkippedRecords(t *testing.T) {
	before := testutil.ToFloat64(metrics.UpstreamRecordsSkipped)

	coll, err := decodeStates([]byte(sampleStates))
	require.NoError(t, err)

	skipped := testutil.ToFloat64(metrics.UpstreamRecordsSkipped) - before
	assert.Equal(t, 2.0, skipped)
	assert.Equal(t, 4, len(coll.Flights)+int(skipped), "every received record is either decoded or counted")
}
