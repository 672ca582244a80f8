package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_ParisToLondon(t *testing.T) {
	d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 340_000 || d > 350_000 {
		t.Errorf("expected ~344 km, got %.0f m", d)
	}
}

func TestDeltas(t *testing.T) {
	latD, lonD := Deltas(0, 111.32)
	if math.Abs(latD-1) > 1e-9 || math.Abs(lonD-1) > 1e-9 {
		t.Errorf("equator: got %f/%f, want 1/1", latD, lonD)
	}

	_, lonD = Deltas(60, 111.32)
	if math.Abs(lonD-2) > 1e-6 {
		t.Errorf("60N: lon delta = %f, want 2", lonD)
	}

	_, lonD = Deltas(90, 500)
	if lonD > 180 || math.IsInf(lonD, 0) {
		t.Errorf("pole: lon delta = %f, want finite <= 180", lonD)
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name          string
		base, d, want float64
	}{
		{"inside", 10, 0.1, 10.1},
		{"negative inside", 10, -0.1, 9.9},
		{"mirrored at upper edge", 179.95, 0.1, 179.85},
		{"mirrored at lower edge", -179.95, -0.07, -179.88},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Offset(tt.base, tt.d, -180, 180); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Offset(%v, %v) = %v, want %v", tt.base, tt.d, got, tt.want)
			}
		})
	}
}

func TestOffset_Latitude(t *testing.T) {
	if got := Offset(90, 0.1, -90, 90); math.Abs(got-89.9) > 1e-9 {
		t.Errorf("north pole: got %v, want 89.9", got)
	}
	if got := Offset(-89.97, -0.08, -90, 90); math.Abs(got+89.89) > 1e-9 {
		t.Errorf("south pole: got %v, want -89.89", got)
	}
}
