package geo

import (
	"errors"
	"math"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/model"
)

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	tr, err := NewTransformer(EPSGDefaultMetric)
	if err != nil {
		t.Fatalf("NewTransformer(%d): %v", EPSGDefaultMetric, err)
	}
	return tr
}

func TestNewTransformer_UnknownEPSG(t *testing.T) {
	_, err := NewTransformer(999999)
	if err == nil {
		t.Fatal("expected error for unknown EPSG code")
	}
}

func TestTransformer_MetricEPSG(t *testing.T) {
	tr := newTestTransformer(t)
	if got := tr.MetricEPSG(); got != EPSGDefaultMetric {
		t.Errorf("MetricEPSG() = %d, want %d", got, EPSGDefaultMetric)
	}
}

func TestTransformer_Roundtrip(t *testing.T) {
	tr := newTestTransformer(t)

	// Narragansett Bay, well inside UTM zone 18N.
	lon, lat := -71.35, 41.55

	x, y, err := tr.ToMetric(lon, lat)
	if err != nil {
		t.Fatalf("ToMetric: %v", err)
	}
	// UTM eastings sit around the 500km false easting and northings
	// grow from the equator, so both must land in the zone's range.
	if x < 100000 || x > 900000 {
		t.Errorf("easting %v outside UTM zone range", x)
	}
	if y < 4000000 || y > 5500000 {
		t.Errorf("northing %v implausible for latitude %v", y, lat)
	}

	gotLon, gotLat, err := tr.ToGeographic(x, y)
	if err != nil {
		t.Fatalf("ToGeographic: %v", err)
	}
	if math.Abs(gotLon-lon) > 1e-6 || math.Abs(gotLat-lat) > 1e-6 {
		t.Errorf("roundtrip (%v,%v) -> (%v,%v)", lon, lat, gotLon, gotLat)
	}
}

func TestTransformer_ToMetricNonFinite(t *testing.T) {
	tr := newTestTransformer(t)
	_, _, err := tr.ToMetric(math.NaN(), 41.5)
	if !errors.Is(err, model.ErrProjection) {
		t.Errorf("ToMetric(NaN) error = %v, want ErrProjection", err)
	}
}

func TestTransformer_LengthNM(t *testing.T) {
	tr := newTestTransformer(t)

	// One degree of latitude is 60 nautical miles by definition.
	ls, err := LineFromReports([]model.PositionReport{
		{Lon: -71.0, Lat: 41.0},
		{Lon: -71.0, Lat: 42.0},
	})
	if err != nil {
		t.Fatalf("LineFromReports: %v", err)
	}
	nm, err := tr.LengthNM(ls)
	if err != nil {
		t.Fatalf("LengthNM: %v", err)
	}
	if math.Abs(nm-60) > 0.5 {
		t.Errorf("LengthNM = %v, want ~60", nm)
	}
}

func TestTransformer_RingRoundtrip(t *testing.T) {
	tr := newTestTransformer(t)

	ring := geom.NewLineString(geom.NewSequence([]float64{
		-71.4, 41.4,
		-71.3, 41.4,
		-71.3, 41.5,
		-71.4, 41.4,
	}, geom.DimXY))

	metric, err := tr.LineToMetric(ring)
	if err != nil {
		t.Fatalf("LineToMetric: %v", err)
	}
	back, err := tr.RingToGeographic(metric)
	if err != nil {
		t.Fatalf("RingToGeographic: %v", err)
	}
	orig := ring.Coordinates()
	got := back.Coordinates()
	if got.Length() != orig.Length() {
		t.Fatalf("point count changed in roundtrip")
	}
	for i := 0; i < orig.Length(); i++ {
		a, b := orig.GetXY(i), got.GetXY(i)
		if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
			t.Errorf("point %d: (%v,%v) -> (%v,%v)", i, a.X, a.Y, b.X, b.Y)
		}
	}
}

func TestPointFromLonLat(t *testing.T) {
	pt := PointFromLonLat(-71.35, 41.55)
	xy, ok := pt.XY()
	if !ok {
		t.Fatal("point has no XY")
	}
	if xy.X != -71.35 || xy.Y != 41.55 {
		t.Errorf("got (%v,%v), want (-71.35,41.55)", xy.X, xy.Y)
	}
}

func TestLineFromReports_TooFewPoints(t *testing.T) {
	_, err := LineFromReports([]model.PositionReport{{Lon: -71, Lat: 41}})
	if err == nil {
		t.Fatal("expected error for single-point line")
	}
}

func TestPolygonsOf(t *testing.T) {
	ring := geom.NewLineString(geom.NewSequence([]float64{
		0, 0, 1, 0, 1, 1, 0, 0,
	}, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ring})

	if got := PolygonsOf(poly.AsGeometry()); len(got) != 1 {
		t.Errorf("Polygon: got %d polygons, want 1", len(got))
	}

	mp := geom.NewMultiPolygon([]geom.Polygon{poly, poly})
	if got := PolygonsOf(mp.AsGeometry()); len(got) != 2 {
		t.Errorf("MultiPolygon: got %d polygons, want 2", len(got))
	}

	gc := geom.NewGeometryCollection([]geom.Geometry{poly.AsGeometry(), mp.AsGeometry()})
	if got := PolygonsOf(gc.AsGeometry()); len(got) != 3 {
		t.Errorf("GeometryCollection: got %d polygons, want 3", len(got))
	}

	pt := PointFromLonLat(0, 0)
	if got := PolygonsOf(pt.AsGeometry()); len(got) != 0 {
		t.Errorf("Point: got %d polygons, want 0", len(got))
	}
}
