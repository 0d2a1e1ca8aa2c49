package geofence

import (
	"errors"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/model"
)

func testTransformer(t *testing.T) *geo.Transformer {
	t.Helper()
	tr, err := geo.NewTransformer(geo.EPSGDefaultMetric)
	if err != nil {
		t.Fatalf("transformer: %v", err)
	}
	return tr
}

// square builds a closed lon/lat square polygon centered on (lon, lat)
// with the given half-side in degrees.
func square(lon, lat, half float64) geom.Polygon {
	flat := []float64{
		lon - half, lat - half,
		lon + half, lat - half,
		lon + half, lat + half,
		lon - half, lat + half,
		lon - half, lat - half,
	}
	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring})
}

func TestNew_NoBufferContainment(t *testing.T) {
	tr := testTransformer(t)

	region, err := New("land", []geom.Polygon{square(-71.0, 41.0, 0.1)}, 0, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !region.Contains(-71.0, 41.0) {
		t.Error("expected center to be contained")
	}
	if region.Contains(-70.5, 41.0) {
		t.Error("expected point outside square to not be contained")
	}
}

func TestNew_PositiveBufferGrows(t *testing.T) {
	tr := testTransformer(t)

	// ~0.012 degrees longitude at 41N is roughly 1 km, inside a 2 km grow.
	region, err := New("land", []geom.Polygon{square(-71.0, 41.0, 0.1)}, 2000, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !region.Contains(-71.112, 41.0) {
		t.Error("expected point just outside the raw square to fall inside the grown region")
	}
	if region.Contains(-71.5, 41.0) {
		t.Error("expected distant point to stay outside")
	}
}

func TestNew_NegativeBufferShrinks(t *testing.T) {
	tr := testTransformer(t)

	region, err := New("land", []geom.Polygon{square(-71.0, 41.0, 0.1)}, -2000, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Just inside the raw edge but within 2 km of it: eroded away.
	if region.Contains(-71.099, 41.0) {
		t.Error("expected near-edge point to be eroded out of the shrunk region")
	}
	if !region.Contains(-71.0, 41.0) {
		t.Error("expected center to survive shrinking")
	}
}

func TestNew_EmptyInputIsDataSourceError(t *testing.T) {
	tr := testTransformer(t)

	_, err := New("land", nil, -200, tr)
	if err == nil {
		t.Fatal("expected error for empty polygon set")
	}
	if !errors.Is(err, model.ErrDataSource) {
		t.Errorf("expected ErrDataSource, got %v", err)
	}
}

func TestFromPorts_CircleContainment(t *testing.T) {
	tr := testTransformer(t)

	ports := []Port{{Name: "Quonset", Lon: -71.415, Lat: 41.585}}
	region, err := FromPorts("ports", ports, 1000, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !region.Contains(-71.415, 41.585) {
		t.Error("expected port center to be contained")
	}
	// ~500 m east of the port.
	if !region.Contains(-71.409, 41.585) {
		t.Error("expected point 500m from port to be inside the 1km mask")
	}
	// ~5 km east of the port.
	if region.Contains(-71.355, 41.585) {
		t.Error("expected point 5km from port to be outside the 1km mask")
	}
}

func TestFromPorts_UnionOfMultiplePorts(t *testing.T) {
	tr := testTransformer(t)

	ports := []Port{
		{Name: "Quonset", Lon: -71.415, Lat: 41.585},
		{Name: "Newport_RI", Lon: -71.328, Lat: 41.484},
	}
	region, err := FromPorts("ports", ports, 1000, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !region.Contains(-71.415, 41.585) {
		t.Error("expected first port to be contained")
	}
	if !region.Contains(-71.328, 41.484) {
		t.Error("expected second port to be contained")
	}
}
