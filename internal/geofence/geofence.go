// Package geofence builds immutable buffered spatial regions from boundary
// polygons and answers point-in-region queries. Buffering happens in a
// projected metric system; geographic-degree buffering is not meaningful at
// coastal latitudes.
package geofence

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/model"
)

// Port is a named harbor location used to build the port-proximity mask.
type Port struct {
	Name string
	Lon  float64
	Lat  float64
}

type bbox struct {
	minX, minY, maxX, maxY float64
}

func (b bbox) contains(x, y float64) bool {
	return x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY
}

// Region is an immutable unioned mask in WGS84 lon/lat. It is safe for
// unlimited concurrent readers.
type Region struct {
	name  string
	parts []geom.Polygon
	boxes []bbox
}

// New builds a Region from boundary polygons (WGS84 lon/lat) with a signed
// metric buffer: positive grows each polygon, negative shrinks it. Any
// failure wraps model.ErrDataSource since no meaningful filtering is
// possible with a broken mask.
func New(name string, polys []geom.Polygon, bufferMeters float64, tr *geo.Transformer) (*Region, error) {
	if len(polys) == 0 {
		return nil, fmt.Errorf("%w: region %q has no polygons", model.ErrDataSource, name)
	}
	buffered := make([]geom.Geometry, 0, len(polys))
	for i, p := range polys {
		g, err := bufferPolygon(p, bufferMeters, tr)
		if err != nil {
			return nil, fmt.Errorf("%w: region %q polygon %d: %v", model.ErrDataSource, name, i, err)
		}
		if g.IsEmpty() {
			// Fully eroded away by a negative buffer.
			continue
		}
		buffered = append(buffered, g)
	}
	mask, err := unionAll(buffered)
	if err != nil {
		return nil, fmt.Errorf("%w: region %q union: %v", model.ErrDataSource, name, err)
	}
	return fromMask(name, mask)
}

// FromPorts builds a Region as the union of metric circles of the given
// radius around each port location.
func FromPorts(name string, ports []Port, radiusMeters float64, tr *geo.Transformer) (*Region, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: region %q has no ports", model.ErrDataSource, name)
	}
	circles := make([]geom.Geometry, 0, len(ports))
	for _, p := range ports {
		x, y, err := tr.ToMetric(p.Lon, p.Lat)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q: %v", model.ErrDataSource, p.Name, err)
		}
		ring, err := tr.RingToGeographic(discRing(x, y, radiusMeters))
		if err != nil {
			return nil, fmt.Errorf("%w: port %q: %v", model.ErrDataSource, p.Name, err)
		}
		circles = append(circles, geom.NewPolygon([]geom.LineString{ring}).AsGeometry())
	}
	mask, err := unionAll(circles)
	if err != nil {
		return nil, fmt.Errorf("%w: region %q union: %v", model.ErrDataSource, name, err)
	}
	return fromMask(name, mask)
}

func fromMask(name string, mask geom.Geometry) (*Region, error) {
	parts := geo.PolygonsOf(mask)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: region %q is empty after buffering", model.ErrDataSource, name)
	}
	r := &Region{name: name, parts: parts}
	for _, p := range parts {
		r.boxes = append(r.boxes, ringBBox(p.ExteriorRing()))
	}
	return r, nil
}

// Name returns the region's name.
func (r *Region) Name() string {
	return r.name
}

// Contains reports whether the lon/lat point lies inside the region.
// Boundary points count as inside.
func (r *Region) Contains(lon, lat float64) bool {
	pt := geo.PointFromLonLat(lon, lat).AsGeometry()
	for i, p := range r.parts {
		// bbox reject keeps the expensive predicate off the hot path
		if !r.boxes[i].contains(lon, lat) {
			continue
		}
		ok, err := geom.Covers(p.AsGeometry(), pt)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Polygons returns the region's component polygons in WGS84 lon/lat.
func (r *Region) Polygons() []geom.Polygon {
	out := make([]geom.Polygon, len(r.parts))
	copy(out, r.parts)
	return out
}

func ringBBox(ring geom.LineString) bbox {
	seq := ring.Coordinates()
	b := bbox{minX: 180, minY: 90, maxX: -180, maxY: -90}
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		if xy.X < b.minX {
			b.minX = xy.X
		}
		if xy.X > b.maxX {
			b.maxX = xy.X
		}
		if xy.Y < b.minY {
			b.minY = xy.Y
		}
		if xy.Y > b.maxY {
			b.maxY = xy.Y
		}
	}
	return b
}
