package model

import "errors"

// Pipeline error taxonomy. Per-vessel failures wrap ErrSchema or
// ErrProjection and are isolated to that vessel; ErrDataSource is fatal to
// the whole run because filtering cannot proceed without region geometry.
var (
	// ErrDataSource indicates boundary/region data could not be obtained
	// or parsed.
	ErrDataSource = errors.New("boundary data source unavailable")

	// ErrSchema indicates a vessel's reports are missing required fields.
	ErrSchema = errors.New("reports missing required fields")

	// ErrEmptyResult indicates a vessel has no reports left after
	// cleaning. It marks a normal skip, not a failure.
	ErrEmptyResult = errors.New("no reports retained")

	// ErrProjection indicates reprojection into metric coordinates failed.
	ErrProjection = errors.New("reprojection failed")
)
