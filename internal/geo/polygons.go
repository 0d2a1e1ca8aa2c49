package geo

import geom "github.com/peterstace/simplefeatures/geom"

// PolygonsOf flattens a geometry into its non-empty polygonal components.
// Non-areal components are ignored.
func PolygonsOf(g geom.Geometry) []geom.Polygon {
	switch {
	case g.IsPolygon():
		p := g.MustAsPolygon()
		if p.IsEmpty() {
			return nil
		}
		return []geom.Polygon{p}
	case g.IsMultiPolygon():
		mp := g.MustAsMultiPolygon()
		var out []geom.Polygon
		for i := 0; i < mp.NumPolygons(); i++ {
			p := mp.PolygonN(i)
			if !p.IsEmpty() {
				out = append(out, p)
			}
		}
		return out
	case g.IsGeometryCollection():
		gc := g.MustAsGeometryCollection()
		var out []geom.Polygon
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, PolygonsOf(gc.GeometryN(i))...)
		}
		return out
	default:
		return nil
	}
}
