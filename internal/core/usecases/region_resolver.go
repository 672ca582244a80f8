package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/pkg/geospatial"
	"github.com/samirrijal/skyglass/internal/pkg/logging"
	"github.com/samirrijal/skyglass/internal/pkg/validation"
)

// Radius limits for point queries, in kilometres.
const (
	MinRadiusKm = 1.0
	MaxRadiusKm = 500.0
)

// RegionConfig tunes how query input is turned into a Region.
type RegionConfig struct {
	DefaultCenter domain.GeoPoint
	// PointDelta is the half-width in degrees around an explicit point.
	PointDelta float64
	// DefaultDelta is the half-width used around DefaultCenter.
	DefaultDelta float64
	// Strict rejects missing or malformed coordinates instead of falling
	// through to the next input shape.
	Strict bool
}

// DefaultRegionConfig centers on Paris with a wide start-up view.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		DefaultCenter: domain.GeoPoint{Lat: 48.85, Lon: 2.35},
		PointDelta:    1.0,
		DefaultDelta:  2.0,
	}
}

// RegionResolver turns raw query input into the box sent to the provider
// and the center used to anchor synthetic flights.
type RegionResolver struct {
	cfg RegionConfig
}

// NewRegionResolver creates a new RegionResolver.
func NewRegionResolver(cfg RegionConfig) *RegionResolver {
	return &RegionResolver{cfg: cfg}
}

// Resolve picks, in order: an explicit box, an explicit point, the default
// point. In strict mode any unusable input, including no input at all, is a
// *domain.ValidationError. In lenient mode Resolve never fails.
func (r *RegionResolver) Resolve(ctx context.Context, q domain.RegionQuery) (domain.Region, error) {
	log := logging.FromContext(ctx)

	if q.HasBox() {
		box, err := parseBox(q)
		if err == nil {
			return domain.Region{Box: box, Center: box.Center(), Source: domain.RegionFromBox}, nil
		}
		if r.cfg.Strict {
			return domain.Region{}, err
		}
		log.Warn("ignoring unusable bounding box", "error", err)
	}

	if q.HasPoint() {
		region, err := r.resolvePoint(q)
		if err == nil {
			return region, nil
		}
		if r.cfg.Strict {
			return domain.Region{}, err
		}
		log.Warn("ignoring unusable point", "error", err)
	}

	if r.cfg.Strict {
		return domain.Region{}, &domain.ValidationError{
			Field:  "lat",
			Reason: "coordinates are required: pass lat and lon, or lamin, lomin, lamax and lomax",
		}
	}

	c := r.cfg.DefaultCenter
	return domain.Region{
		Box:    domain.ExpandPoint(c, r.cfg.DefaultDelta, r.cfg.DefaultDelta),
		Center: c,
		Source: domain.RegionFromDefault,
	}, nil
}

func (r *RegionResolver) resolvePoint(q domain.RegionQuery) (domain.Region, error) {
	lat, err := parseCoord("lat", q.Lat)
	if err != nil {
		return domain.Region{}, err
	}
	lon, err := parseCoord("lon", q.Lon)
	if err != nil {
		return domain.Region{}, err
	}

	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return domain.Region{}, toValidationError(err)
	}

	latDelta, lonDelta := r.cfg.PointDelta, r.cfg.PointDelta
	if q.Radius != "" {
		km, err := parseCoord("radius", q.Radius)
		if err != nil {
			return domain.Region{}, err
		}
		if km < MinRadiusKm || km > MaxRadiusKm {
			return domain.Region{}, &domain.ValidationError{
				Field:  "radius",
				Reason: fmt.Sprintf("must be between %g and %g km", MinRadiusKm, MaxRadiusKm),
			}
		}
		latDelta, lonDelta = geospatial.Deltas(lat, km)
	}

	return domain.Region{
		Box:    domain.ExpandPoint(p, latDelta, lonDelta),
		Center: p,
		Source: domain.RegionFromPoint,
	}, nil
}

func parseBox(q domain.RegionQuery) (domain.BoundingBox, error) {
	var (
		box domain.BoundingBox
		err error
	)
	if box.LatMin, err = parseCoord("lamin", q.LatMin); err != nil {
		return box, err
	}
	if box.LonMin, err = parseCoord("lomin", q.LonMin); err != nil {
		return box, err
	}
	if box.LatMax, err = parseCoord("lamax", q.LatMax); err != nil {
		return box, err
	}
	if box.LonMax, err = parseCoord("lomax", q.LonMax); err != nil {
		return box, err
	}
	if err := box.Validate(); err != nil {
		return box, toValidationError(err)
	}
	return box, nil
}

func parseCoord(field, raw string) (float64, error) {
	if raw == "" {
		return 0, &domain.ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !domain.IsFinite(v) {
		return 0, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a finite number", raw)}
	}
	return v, nil
}

// toValidationError reports the first failed rule as a domain error.
func toValidationError(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &domain.ValidationError{Field: verrs[0].Field, Reason: verrs[0].Message}
	}
	return &domain.ValidationError{Reason: err.Error()}
}
