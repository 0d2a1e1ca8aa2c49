package model

import (
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&TripRecord{},
	&PointRecord{},
	&DensityRecord{},
}

// TripRecord is one segmented trip with its track geometry.
type TripRecord struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	MMSI          string    `json:"mmsi" gorm:"size:16;index:idx_trip_mmsi"`
	TripNumber    int       `json:"tripNumber"`
	StartTime     time.Time `json:"startTime" gorm:"type:timestamptz"`
	EndTime       time.Time `json:"endTime" gorm:"type:timestamptz"`
	DurationHours float64   `json:"durationHours"`
	PointCount    int       `json:"pointCount"`
	HadStationary bool      `json:"hadStationary"`

	// Line is the WKT track geometry, empty for single-point trips.
	Line       string          `json:"line" gorm:"type:text"`
	DistanceNM sql.NullFloat64 `json:"distanceNm"`
}

func (*TripRecord) TableName() string {
	return "trips"
}

// PointRecord is one retained position report with its derived fields.
type PointRecord struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	MMSI          string          `json:"mmsi" gorm:"size:16;index:idx_point_mmsi"`
	Time          time.Time       `json:"time" gorm:"type:timestamptz;index:idx_point_time"`
	Lat           float64         `json:"lat"`
	Lon           float64         `json:"lon"`
	SOG           sql.NullFloat64 `json:"sog"`
	Status        int             `json:"status"`
	TimeDiffHours sql.NullFloat64 `json:"timeDiffHours"`
	GapFlag       bool            `json:"gapFlag"`
	LowSpeed      bool            `json:"lowSpeed"`
	Stationary    bool            `json:"stationary"`
	InRegion      bool            `json:"inRegion"`
	TripStart     bool            `json:"tripStart"`
	TripID        int             `json:"tripId" gorm:"index:idx_point_trip"`
	Attrs         datatypes.JSON  `json:"attrs"`
}

func (*PointRecord) TableName() string {
	return "points"
}

// DensityRecord is one vessel-cell dwell time value.
type DensityRecord struct {
	ID          uint    `json:"id" gorm:"primarykey"`
	CellToken   string  `json:"cellToken" gorm:"size:32;index:idx_density_cell"`
	MMSI        string  `json:"mmsi" gorm:"size:16;index:idx_density_mmsi"`
	VesselHours float64 `json:"vesselHours"`

	// Boundary is the WKT cell outline.
	Boundary string `json:"boundary" gorm:"type:text"`
}

func (*DensityRecord) TableName() string {
	return "density_cells"
}

////////////////////////
// CONVERTERS
////////////////////////

// NewTripRecord converts a track line to its database row.
func NewTripRecord(track TrackLine) TripRecord {
	rec := TripRecord{
		MMSI:          track.MMSI,
		TripNumber:    track.TripID,
		StartTime:     track.Start,
		EndTime:       track.End,
		DurationHours: track.DurationHours,
		PointCount:    track.PointCount,
		HadStationary: track.HadStationary,
	}
	if track.HasLine {
		rec.Line = track.Line.AsText()
	}
	if track.HasDistance {
		rec.DistanceNM = sql.NullFloat64{Float64: track.DistanceNM, Valid: true}
	}
	return rec
}

// NewPointRecord converts a position report to its database row.
func NewPointRecord(r PositionReport) PointRecord {
	rec := PointRecord{
		MMSI:          r.MMSI,
		Time:          r.Time,
		Lat:           r.Lat,
		Lon:           r.Lon,
		Status:        int(r.Status),
		TimeDiffHours: r.TimeSincePrev,
		GapFlag:       r.GapFlag,
		LowSpeed:      r.LowSpeed,
		Stationary:    r.Stationary,
		InRegion:      r.InRegion,
		TripStart:     r.TripStart,
		TripID:        r.TripID,
	}
	if !math.IsNaN(r.SOG) {
		rec.SOG = sql.NullFloat64{Float64: r.SOG, Valid: true}
	}
	if len(r.Attrs) > 0 {
		if raw, err := json.Marshal(r.Attrs); err == nil {
			rec.Attrs = datatypes.JSON(raw)
		}
	}
	return rec
}

// NewDensityRecord converts a density cell to its database row.
func NewDensityRecord(c DensityCell) DensityRecord {
	return DensityRecord{
		CellToken:   c.CellToken,
		MMSI:        c.MMSI,
		VesselHours: c.VesselHours,
		Boundary:    c.Boundary.AsText(),
	}
}
