package domain

import (
	"math"

	"github.com/samirrijal/skyglass/internal/pkg/validation"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Validate checks that the point lies on the globe.
func (p GeoPoint) Validate() error {
	return validation.Struct(p)
}

// BoundingBox is a validated geographic rectangle, all values in degrees.
// A valid box has LatMin < LatMax and LonMin < LonMax.
type BoundingBox struct {
	LatMin float64 `json:"lamin" validate:"latitude"`
	LonMin float64 `json:"lomin" validate:"longitude"`
	LatMax float64 `json:"lamax" validate:"latitude,gtfield=LatMin"`
	LonMax float64 `json:"lomax" validate:"longitude,gtfield=LonMin"`
}

// Validate checks coordinate ranges and min/max ordering.
func (b BoundingBox) Validate() error {
	return validation.Struct(b)
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.LatMin + b.LatMax) / 2,
		Lon: (b.LonMin + b.LonMax) / 2,
	}
}

// Contains reports whether p lies strictly inside the box.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat > b.LatMin && p.Lat < b.LatMax &&
		p.Lon > b.LonMin && p.Lon < b.LonMax
}

// Width is the longitude span in degrees.
func (b BoundingBox) Width() float64 { return b.LonMax - b.LonMin }

// Height is the latitude span in degrees.
func (b BoundingBox) Height() float64 { return b.LatMax - b.LatMin }

// ExpandPoint builds a box around p with the given half-widths, clamped to
// the valid coordinate ranges.
func ExpandPoint(p GeoPoint, latDelta, lonDelta float64) BoundingBox {
	return BoundingBox{
		LatMin: clamp(p.Lat-latDelta, -90, 90),
		LonMin: clamp(p.Lon-lonDelta, -180, 180),
		LatMax: clamp(p.Lat+latDelta, -90, 90),
		LonMax: clamp(p.Lon+lonDelta, -180, 180),
	}
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
