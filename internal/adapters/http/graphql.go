package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boxType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"lamin": &graphql.Field{Type: graphql.Float},
			"lomin": &graphql.Field{Type: graphql.Float},
			"lamax": &graphql.Field{Type: graphql.Float},
			"lomax": &graphql.Field{Type: graphql.Float},
		},
	})

	flightType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Flight",
		Fields: graphql.Fields{
			"icao24":         &graphql.Field{Type: graphql.String},
			"callsign":       &graphql.Field{Type: graphql.String},
			"origin_country": &graphql.Field{Type: graphql.String},
			"time_position":  &graphql.Field{Type: graphql.Int},
			"last_contact":   &graphql.Field{Type: graphql.Int},
			"longitude":      &graphql.Field{Type: graphql.Float},
			"latitude":       &graphql.Field{Type: graphql.Float},
			"baro_altitude":  &graphql.Field{Type: graphql.Float},
			"on_ground":      &graphql.Field{Type: graphql.Boolean},
			"velocity":       &graphql.Field{Type: graphql.Float},
			"true_track":     &graphql.Field{Type: graphql.Float},
			"vertical_rate":  &graphql.Field{Type: graphql.Float},
			"sensors":        &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"geo_altitude":   &graphql.Field{Type: graphql.Float},
			"squawk":         &graphql.Field{Type: graphql.String},
			"spi":            &graphql.Field{Type: graphql.Boolean},
			"position_source": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.FlightState).PositionSource), nil
				},
			},
			"category": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.FlightState).Category), nil
				},
			},
			"emergency": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Squawking 7500, 7600 or 7700",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.FlightState).IsEmergency(), nil
				},
			},
		},
	})

	flightsResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Flights",
		Fields: graphql.Fields{
			"observed_at_epoch_millis": &graphql.Field{Type: graphql.Float},
			"source":                   &graphql.Field{Type: graphql.String},
			"region":                   &graphql.Field{Type: boxType},
			"flights":                  &graphql.Field{Type: graphql.NewList(flightType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"flights": &graphql.Field{
				Type:        flightsResultType,
				Description: "Aircraft near a point or inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":    &graphql.ArgumentConfig{Type: graphql.Float},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, Description: "km"},
					"lamin":  &graphql.ArgumentConfig{Type: graphql.Float},
					"lomin":  &graphql.ArgumentConfig{Type: graphql.Float},
					"lamax":  &graphql.ArgumentConfig{Type: graphql.Float},
					"lomax":  &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := domain.RegionQuery{
						Lat:    floatArg(p.Args, "lat"),
						Lon:    floatArg(p.Args, "lon"),
						Radius: floatArg(p.Args, "radius"),
						LatMin: floatArg(p.Args, "lamin"),
						LonMin: floatArg(p.Args, "lomin"),
						LatMax: floatArg(p.Args, "lamax"),
						LonMax: floatArg(p.Args, "lomax"),
					}
					res, err := deps.Flights.Nearby(p.Context, q)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						// Float: epoch millis overflow GraphQL's 32-bit Int.
						"observed_at_epoch_millis": float64(res.Collection.ObservedAtEpochMillis),
						"source":                   string(res.Source),
						"region":                   res.Region.Box,
						"flights":                  res.Collection.Flights,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// floatArg renders an optional numeric argument the way it would arrive as
// a query string, so GraphQL shares the REST resolution rules.
func floatArg(args map[string]interface{}, name string) string {
	v, ok := args[name].(float64)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
