package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// loadOpenAPI finds api/openapi.yaml above the package directory and parses it.
func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		path := filepath.Join(dir, "api", "openapi.yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			doc, err := (&openapi3.Loader{}).LoadFromData(data)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			return doc
		}
		dir = filepath.Dir(dir)
	}

	t.Fatal("api/openapi.yaml not found")
	return nil
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc := loadOpenAPI(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("invalid document: %v", err)
	}

	if doc.Info.Title != "Skyglass API" || doc.Info.Version != "1.0.0" {
		t.Errorf("unexpected info %q %q", doc.Info.Title, doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

func TestOpenAPIDocumentsEveryRoute(t *testing.T) {
	doc := loadOpenAPI(t)

	routes := map[string]string{
		"/v1/flights": "GET",
		"/api/glass":  "GET",
		"/graphql":    "POST",
		"/v1/health":  "GET",
		"/v1/ready":   "GET",
		"/metrics":    "GET",
	}
	for path, method := range routes {
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("%s missing", path)
			continue
		}
		if item.GetOperation(method) == nil {
			t.Errorf("%s %s missing", method, path)
		}
	}

	for _, name := range []string{"FlightState", "FlightStateCollection", "APIError", "Readiness"} {
		if doc.Components.Schemas[name] == nil {
			t.Errorf("schema %s missing", name)
		}
	}
}

func TestOpenAPILegacyRouteDeprecated(t *testing.T) {
	doc := loadOpenAPI(t)

	if op := doc.Paths.Find("/api/glass").Get; !op.Deprecated {
		t.Error("expected GET /api/glass to be deprecated")
	}
	if op := doc.Paths.Find("/v1/flights").Get; op.Deprecated {
		t.Error("expected GET /v1/flights to be current")
	}
}

func TestOpenAPIFlightStateFields(t *testing.T) {
	doc := loadOpenAPI(t)

	props := doc.Components.Schemas["FlightState"].Value.Properties
	for _, field := range []string{"icao24", "callsign", "latitude", "longitude", "baro_altitude", "squawk", "category"} {
		if props[field] == nil {
			t.Errorf("FlightState.%s missing", field)
		}
	}
}
