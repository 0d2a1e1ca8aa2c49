package geo

import (
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/vesselwatch/aistracks/internal/model"
)

// GEO REPROJECTION
// All geometry is carried in WGS84 lon/lat (EPSG:4326). Buffering and
// length computations are only valid in a projected metric system, so both
// are routed through an explicit Transformer rather than relying on any
// implicit CRS state on the geometry values themselves.

// MetersToNauticalMiles converts projected meters to nautical miles.
const MetersToNauticalMiles = 0.000539957

// EPSG codes used throughout the pipeline.
const (
	EPSGGeographic = 4326
	// EPSGDefaultMetric is WGS84 / UTM zone 18N, covering the US east
	// coast study area. Override per deployment via config.
	EPSGDefaultMetric = 32618
)

// Transformer converts coordinates between EPSG:4326 and one projected
// metric system. It is immutable and safe for concurrent use.
type Transformer struct {
	metricEPSG int
	toMetric   wgs84.Func
	toGeo      wgs84.Func
}

// NewTransformer builds a Transformer for the given projected EPSG code.
func NewTransformer(metricEPSG int) (*Transformer, error) {
	epsg := wgs84.EPSG()
	t := &Transformer{
		metricEPSG: metricEPSG,
		toMetric:   epsg.Transform(EPSGGeographic, metricEPSG),
		toGeo:      epsg.Transform(metricEPSG, EPSGGeographic),
	}
	// The registry hands back a transform even for codes it does not
	// know; probe it so a bad code fails at construction.
	if _, _, err := t.ToMetric(0, 45); err != nil {
		return nil, fmt.Errorf("EPSG:%d: %w", metricEPSG, err)
	}
	return t, nil
}

// MetricEPSG returns the projected EPSG code this transformer targets.
func (t *Transformer) MetricEPSG() int {
	return t.metricEPSG
}

// ToMetric projects a lon/lat coordinate into the metric system.
func (t *Transformer) ToMetric(lon, lat float64) (x, y float64, err error) {
	x, y, _ = t.toMetric(lon, lat, 0)
	if !finite(x) || !finite(y) {
		return 0, 0, fmt.Errorf("%w: lon=%v lat=%v to EPSG:%d", model.ErrProjection, lon, lat, t.metricEPSG)
	}
	return x, y, nil
}

// ToGeographic converts a projected metric coordinate back to lon/lat.
func (t *Transformer) ToGeographic(x, y float64) (lon, lat float64, err error) {
	lon, lat, _ = t.toGeo(x, y, 0)
	if !finite(lon) || !finite(lat) {
		return 0, 0, fmt.Errorf("%w: x=%v y=%v from EPSG:%d", model.ErrProjection, x, y, t.metricEPSG)
	}
	return lon, lat, nil
}

// LineToMetric reprojects a lon/lat LineString into the metric system.
func (t *Transformer) LineToMetric(ls geom.LineString) (geom.LineString, error) {
	seq, err := t.reprojectSeq(ls.Coordinates(), t.toMetric)
	if err != nil {
		return geom.LineString{}, err
	}
	return geom.NewLineString(seq), nil
}

// RingToGeographic reprojects a projected polygon ring back to lon/lat.
func (t *Transformer) RingToGeographic(ring geom.LineString) (geom.LineString, error) {
	seq, err := t.reprojectSeq(ring.Coordinates(), t.toGeo)
	if err != nil {
		return geom.LineString{}, err
	}
	return geom.NewLineString(seq), nil
}

// LengthNM projects a lon/lat LineString into the metric system and
// returns its length in nautical miles.
func (t *Transformer) LengthNM(ls geom.LineString) (float64, error) {
	projected, err := t.LineToMetric(ls)
	if err != nil {
		return 0, err
	}
	return projected.Length() * MetersToNauticalMiles, nil
}

func (t *Transformer) reprojectSeq(seq geom.Sequence, f wgs84.Func) (geom.Sequence, error) {
	n := seq.Length()
	flat := make([]float64, 0, n*2)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		x, y, _ := f(xy.X, xy.Y, 0)
		if !finite(x) || !finite(y) {
			return geom.Sequence{}, fmt.Errorf("%w: point %d (%v,%v)", model.ErrProjection, i, xy.X, xy.Y)
		}
		flat = append(flat, x, y)
	}
	return geom.NewSequence(flat, geom.DimXY), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PointFromLonLat builds an XY point geometry from lon/lat coordinates.
func PointFromLonLat(lon, lat float64) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Type: geom.DimXY,
	})
}

// LineFromReports builds a lon/lat LineString through reports in slice
// order. At least two reports are required.
func LineFromReports(reports []model.PositionReport) (geom.LineString, error) {
	if len(reports) < 2 {
		return geom.LineString{}, fmt.Errorf("line needs at least 2 points, got %d", len(reports))
	}
	flat := make([]float64, 0, len(reports)*2)
	for _, r := range reports {
		flat = append(flat, r.Lon, r.Lat)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}
