package geofence

import (
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/geo"
)

// Metric buffering via Minkowski set operations. simplefeatures carries
// exact pure-Go Union/Difference but no buffer primitive, so the buffer is
// assembled from them: dilating a polygon by d is the union of the polygon
// with its boundary swept by a disc of radius d, and eroding by d is the
// polygon minus the swept boundary.

// discSegments controls how finely buffer discs approximate a circle.
const discSegments = 32

func bufferPolygon(p geom.Polygon, bufferMeters float64, tr *geo.Transformer) (geom.Geometry, error) {
	if bufferMeters == 0 {
		return p.AsGeometry(), nil
	}

	metric, err := projectPolygon(p, tr)
	if err != nil {
		return geom.Geometry{}, err
	}

	swept, err := sweptBoundary(metric, math.Abs(bufferMeters))
	if err != nil {
		return geom.Geometry{}, err
	}

	var result geom.Geometry
	if bufferMeters > 0 {
		result, err = geom.Union(metric.AsGeometry(), swept)
	} else {
		result, err = geom.Difference(metric.AsGeometry(), swept)
	}
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("buffer set operation: %w", err)
	}

	return unprojectPolygons(result, tr)
}

func projectPolygon(p geom.Polygon, tr *geo.Transformer) (geom.Polygon, error) {
	rings, err := projectRings(p, tr.LineToMetric)
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon(rings), nil
}

func projectRings(p geom.Polygon, f func(geom.LineString) (geom.LineString, error)) ([]geom.LineString, error) {
	rings := make([]geom.LineString, 0, 1+p.NumInteriorRings())
	ext, err := f(p.ExteriorRing())
	if err != nil {
		return nil, err
	}
	rings = append(rings, ext)
	for i := 0; i < p.NumInteriorRings(); i++ {
		in, err := f(p.InteriorRingN(i))
		if err != nil {
			return nil, err
		}
		rings = append(rings, in)
	}
	return rings, nil
}

// sweptBoundary returns the union of discs at every ring vertex and
// rectangles along every ring edge, i.e. the polygon boundary dilated by
// radius meters, in projected coordinates.
func sweptBoundary(p geom.Polygon, radius float64) (geom.Geometry, error) {
	var pieces []geom.Geometry
	addRing := func(ring geom.LineString) {
		seq := ring.Coordinates()
		n := seq.Length()
		for i := 0; i < n; i++ {
			xy := seq.GetXY(i)
			pieces = append(pieces, ringPolygon(discRing(xy.X, xy.Y, radius)))
			if i+1 < n {
				next := seq.GetXY(i + 1)
				if rect, ok := edgeRect(xy.X, xy.Y, next.X, next.Y, radius); ok {
					pieces = append(pieces, rect)
				}
			}
		}
	}
	addRing(p.ExteriorRing())
	for i := 0; i < p.NumInteriorRings(); i++ {
		addRing(p.InteriorRingN(i))
	}
	return unionAll(pieces)
}

// discRing builds a closed ring approximating a circle of the given radius
// around (cx, cy).
func discRing(cx, cy, radius float64) geom.LineString {
	flat := make([]float64, 0, (discSegments+1)*2)
	for i := 0; i <= discSegments; i++ {
		theta := 2 * math.Pi * float64(i%discSegments) / discSegments
		flat = append(flat, cx+radius*math.Cos(theta), cy+radius*math.Sin(theta))
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// edgeRect builds the rectangle of half-width radius along the edge
// (ax,ay)-(bx,by). Degenerate edges produce no rectangle.
func edgeRect(ax, ay, bx, by, radius float64) (geom.Geometry, bool) {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return geom.Geometry{}, false
	}
	// unit normal
	nx, ny := -dy/length*radius, dx/length*radius
	flat := []float64{
		ax + nx, ay + ny,
		bx + nx, by + ny,
		bx - nx, by - ny,
		ax - nx, ay - ny,
		ax + nx, ay + ny,
	}
	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return ringPolygon(ring), true
}

func ringPolygon(ring geom.LineString) geom.Geometry {
	return geom.NewPolygon([]geom.LineString{ring}).AsGeometry()
}

// unionAll folds geometries pairwise into a single union. A balanced fold
// keeps intermediate results small.
func unionAll(gs []geom.Geometry) (geom.Geometry, error) {
	switch len(gs) {
	case 0:
		return geom.Geometry{}, nil
	case 1:
		return gs[0], nil
	}
	mid := len(gs) / 2
	left, err := unionAll(gs[:mid])
	if err != nil {
		return geom.Geometry{}, err
	}
	right, err := unionAll(gs[mid:])
	if err != nil {
		return geom.Geometry{}, err
	}
	return geom.Union(left, right)
}

// unprojectPolygons reprojects every polygonal component of a projected
// geometry back to lon/lat and reassembles them.
func unprojectPolygons(g geom.Geometry, tr *geo.Transformer) (geom.Geometry, error) {
	parts := geo.PolygonsOf(g)
	if len(parts) == 0 {
		return geom.Geometry{}, nil
	}
	out := make([]geom.Polygon, 0, len(parts))
	for _, p := range parts {
		rings, err := projectRings(p, tr.RingToGeographic)
		if err != nil {
			return geom.Geometry{}, err
		}
		out = append(out, geom.NewPolygon(rings))
	}
	if len(out) == 1 {
		return out[0].AsGeometry(), nil
	}
	return geom.NewMultiPolygon(out).AsGeometry(), nil
}
