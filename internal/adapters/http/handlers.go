package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

// HeaderFlightSource tells clients whether flights are live or synthetic.
const HeaderFlightSource = "X-Flight-Source"

// FlightsHandler returns the aircraft near the requested location.
//
// Query: lat, lon, radius (km) or lamin, lomin, lamax, lomax. The camelCase
// aliases latMin, lonMin, latMax, lonMax are accepted; the OpenSky names win
// when both are present.
func FlightsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Flights.Nearby(c.UserContext(), regionQuery(c))
		if err != nil {
			return writeFlightError(c, err)
		}

		c.Set(HeaderFlightSource, string(res.Source))
		c.Set(fiber.HeaderCacheControl, deps.Cache.String())
		return c.JSON(res.Collection)
	}
}

func regionQuery(c *fiber.Ctx) domain.RegionQuery {
	return domain.RegionQuery{
		Lat:    c.Query("lat"),
		Lon:    c.Query("lon"),
		Radius: c.Query("radius"),
		LatMin: queryAlias(c, "lamin", "latMin"),
		LonMin: queryAlias(c, "lomin", "lonMin"),
		LatMax: queryAlias(c, "lamax", "latMax"),
		LonMax: queryAlias(c, "lomax", "lonMax"),
	}
}

// queryAlias returns the first non-empty value among the given keys.
func queryAlias(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}
