package rag

import "testing"

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestBuildFilter_NoConstraints(t *testing.T) {
	t.Parallel()

	if f := BuildFilter(FilterParams{}); f != nil {
		t.Errorf("expected nil filter for empty params, got %+v", f)
	}
}

func TestBuildFilter_BudgetBand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		budget  int
		wantMin int
		wantMax int
	}{
		{10000, 7000, 13000},
		{30000, 21000, 39000},
		{15000, 10500, 19500},
		// Floor, not round: 0.7*9999 = 6999.3, 1.3*9999 = 12998.7.
		{9999, 6999, 12998},
	}

	for _, tc := range cases {
		f := BuildFilter(FilterParams{Budget: intPtr(tc.budget)})
		if f == nil || f.Price == nil {
			t.Fatalf("budget=%d: expected price filter, got %+v", tc.budget, f)
		}
		if *f.Price.Min != tc.wantMin || *f.Price.Max != tc.wantMax {
			t.Errorf("budget=%d: got [%d, %d], want [%d, %d]",
				tc.budget, *f.Price.Min, *f.Price.Max, tc.wantMin, tc.wantMax)
		}
		if f.Geo != nil {
			t.Errorf("budget=%d: unexpected geo clause", tc.budget)
		}
	}
}

func TestBuildFilter_GeoDefaultRadius(t *testing.T) {
	t.Parallel()

	f := BuildFilter(FilterParams{Lat: floatPtr(37.5665), Lng: floatPtr(126.978)})
	if f == nil || f.Geo == nil {
		t.Fatalf("expected geo filter, got %+v", f)
	}
	if f.Geo.Lat != 37.5665 || f.Geo.Lng != 126.978 {
		t.Errorf("coordinates not carried over: %+v", f.Geo)
	}
	if f.Geo.RadiusKm != DefaultRadiusKm {
		t.Errorf("expected default radius %d, got %g", DefaultRadiusKm, f.Geo.RadiusKm)
	}
	if f.Price != nil {
		t.Error("unexpected price clause")
	}
}

func TestBuildFilter_GeoRadiusOverride(t *testing.T) {
	t.Parallel()

	f := BuildFilter(FilterParams{Lat: floatPtr(37.5), Lng: floatPtr(127.0), RadiusKm: 1.5})
	if f == nil || f.Geo == nil {
		t.Fatalf("expected geo filter, got %+v", f)
	}
	if f.Geo.RadiusKm != 1.5 {
		t.Errorf("expected radius 1.5, got %g", f.Geo.RadiusKm)
	}
}

func TestBuildFilter_Combined(t *testing.T) {
	t.Parallel()

	f := BuildFilter(FilterParams{
		Lat:      floatPtr(37.498),
		Lng:      floatPtr(127.028),
		Budget:   intPtr(30000),
		Category: "이탈리안",
	})
	if f == nil {
		t.Fatal("expected non-nil filter")
	}
	if f.Geo == nil || f.Price == nil || f.Category != "이탈리안" {
		t.Errorf("expected all three clauses, got %+v", f)
	}
	if *f.Price.Min != 21000 || *f.Price.Max != 39000 {
		t.Errorf("budget band: got [%d, %d], want [21000, 39000]", *f.Price.Min, *f.Price.Max)
	}
}

func TestBuildFilter_CategoryOnly(t *testing.T) {
	t.Parallel()

	f := BuildFilter(FilterParams{Category: "한식"})
	if f == nil {
		t.Fatal("expected non-nil filter for category-only params")
	}
	if f.Category != "한식" || f.Geo != nil || f.Price != nil {
		t.Errorf("unexpected filter shape: %+v", f)
	}
}
