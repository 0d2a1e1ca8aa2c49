// Package density bins enriched position reports into S2 cells and sums
// per-vessel dwell time per cell. It is a stateless group-and-sum over the
// segmentation pipeline's output; no ordering or transition logic.
package density

import (
	"sort"

	"github.com/golang/geo/s2"
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/model"
)

// DefaultLevel is the S2 cell level used for binning; level 13 cells are
// roughly a square kilometer, comparable to the hex bins of the source
// workflow.
const DefaultLevel = 13

// Aggregate bins one vessel's retained reports at the given S2 level and
// sums their time-since-previous hours per cell, approximating
// vessel-hours of presence. Reports without a time-since-previous value
// (each vessel's first) still claim their cell with zero hours. Cells come
// back sorted by token for deterministic output.
func Aggregate(reports []model.PositionReport, level int) []model.DensityCell {
	if len(reports) == 0 {
		return nil
	}

	hours := make(map[s2.CellID]float64)
	for _, r := range reports {
		id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(r.Lat, r.Lon)).Parent(level)
		if r.TimeSincePrev.Valid {
			hours[id] += r.TimeSincePrev.Float64
		} else {
			hours[id] += 0
		}
	}

	mmsi := reports[0].MMSI
	out := make([]model.DensityCell, 0, len(hours))
	for id, h := range hours {
		out = append(out, model.DensityCell{
			CellToken:   id.ToToken(),
			MMSI:        mmsi,
			VesselHours: h,
			Boundary:    cellBoundary(id),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CellToken < out[j].CellToken
	})
	return out
}

// cellBoundary builds the lon/lat outline polygon of an S2 cell.
func cellBoundary(id s2.CellID) geom.Polygon {
	cell := s2.CellFromCellID(id)
	flat := make([]float64, 0, 10)
	for k := 0; k < 4; k++ {
		ll := s2.LatLngFromPoint(cell.Vertex(k))
		flat = append(flat, ll.Lng.Degrees(), ll.Lat.Degrees())
	}
	// close the ring
	flat = append(flat, flat[0], flat[1])
	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring})
}
