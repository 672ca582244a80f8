package geospatial

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32

	// minCos keeps longitude spans finite near the poles.
	minCos = 0.01
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Deltas returns the latitude and longitude half-widths, in degrees, of a
// box covering radiusKm around a point at the given latitude.
func Deltas(lat, radiusKm float64) (latDelta, lonDelta float64) {
	latDelta = radiusKm / kmPerDegree
	lonDelta = radiusKm / (kmPerDegree * math.Max(math.Cos(toRad(lat)), minCos))
	return latDelta, math.Min(lonDelta, 180)
}

// Offset moves base by d, or by -d when base+d would leave [lo, hi]. The
// result stays within |d| of base for any base in range and |d| <= (hi-lo)/2.
func Offset(base, d, lo, hi float64) float64 {
	if v := base + d; v >= lo && v <= hi {
		return v
	}
	return base - d
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
