package rag

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestQdrantFilter_Nil(t *testing.T) {
	t.Parallel()

	if f := qdrantFilter(nil); f != nil {
		t.Errorf("expected nil for nil filter, got %+v", f)
	}
	if f := qdrantFilter(&Filter{}); f != nil {
		t.Errorf("expected nil for empty filter, got %+v", f)
	}
}

func TestQdrantFilter_GeoRadiusInMeters(t *testing.T) {
	t.Parallel()

	f := qdrantFilter(&Filter{Geo: &GeoDistance{Lat: 37.498, Lng: 127.028, RadiusKm: 5}})
	if f == nil || len(f.Must) != 1 {
		t.Fatalf("expected one condition, got %+v", f)
	}

	geo := f.Must[0].GetField().GetGeoRadius()
	if geo == nil {
		t.Fatal("expected a geo_radius condition")
	}
	if f.Must[0].GetField().GetKey() != "location" {
		t.Errorf("key = %q, want location", f.Must[0].GetField().GetKey())
	}
	if geo.GetCenter().GetLat() != 37.498 || geo.GetCenter().GetLon() != 127.028 {
		t.Errorf("center = %+v", geo.GetCenter())
	}
	if geo.GetRadius() != 5000 {
		t.Errorf("radius = %g meters, want 5000", geo.GetRadius())
	}
}

func TestQdrantFilter_PriceRange(t *testing.T) {
	t.Parallel()

	min, max := 21000, 39000
	f := qdrantFilter(&Filter{Price: &PriceRange{Min: &min, Max: &max}})
	if f == nil || len(f.Must) != 1 {
		t.Fatalf("expected one condition, got %+v", f)
	}

	field := f.Must[0].GetField()
	if field.GetKey() != "price" {
		t.Errorf("key = %q, want price", field.GetKey())
	}
	rng := field.GetRange()
	if rng.GetGte() != 21000 || rng.GetLte() != 39000 {
		t.Errorf("range = %+v", rng)
	}
}

func TestQdrantFilter_Category(t *testing.T) {
	t.Parallel()

	f := qdrantFilter(&Filter{Category: "이탈리안"})
	if f == nil || len(f.Must) != 1 {
		t.Fatalf("expected one condition, got %+v", f)
	}

	field := f.Must[0].GetField()
	if field.GetKey() != "category" {
		t.Errorf("key = %q, want category", field.GetKey())
	}
	if field.GetMatch().GetKeyword() != "이탈리안" {
		t.Errorf("match = %+v", field.GetMatch())
	}
}

func TestQdrantFilter_AllClauses(t *testing.T) {
	t.Parallel()

	f := qdrantFilter(fullFilter())
	if f == nil || len(f.Must) != 3 {
		t.Fatalf("expected three conditions, got %+v", f)
	}
}

func TestRestaurantFromPayload(t *testing.T) {
	t.Parallel()

	payload := map[string]*qdrant.Value{
		"name":        qdrant.NewValueString("파스타밀라노"),
		"category":    qdrant.NewValueString("이탈리안"),
		"location":    qdrant.NewValueString("강남역"),
		"price":       qdrant.NewValueInt(25000),
		"rating":      qdrant.NewValueDouble(4.5),
		"description": qdrant.NewValueString("수제 생면"),
		"menu":        qdrant.NewValueString("알리오올리오"),
		"unknown":     qdrant.NewValueString("무시"),
	}

	r := restaurantFromPayload(payload)
	if r.Name != "파스타밀라노" || r.Category != "이탈리안" || r.Location != "강남역" {
		t.Errorf("text fields: %+v", r)
	}
	if r.Price != 25000 || r.Rating != 4.5 {
		t.Errorf("numeric fields: price=%d rating=%g", r.Price, r.Rating)
	}
	if r.Description != "수제 생면" || r.Menu != "알리오올리오" {
		t.Errorf("free-text fields: %+v", r)
	}
}

func TestRestaurantFromPayload_NilAndMissing(t *testing.T) {
	t.Parallel()

	if r := restaurantFromPayload(nil); r != (Restaurant{}) {
		t.Errorf("nil payload should yield zero value, got %+v", r)
	}

	r := restaurantFromPayload(map[string]*qdrant.Value{
		"name": qdrant.NewValueString("무명식당"),
	})
	if r.Name != "무명식당" || r.Price != 0 || r.Rating != 0 {
		t.Errorf("missing keys should stay zero: %+v", r)
	}
}
