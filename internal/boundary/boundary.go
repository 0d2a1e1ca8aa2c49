// Package boundary obtains the land/state boundary polygons used to build
// the land mask. The source is an ArcGIS-style REST endpoint serving
// GeoJSON, or a local GeoJSON file for offline runs. The polygons come back
// in WGS84 lon/lat; buffering is the geofence package's concern.
package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/model"
)

// userAgent mimics a browser; some feature servers reject default Go
// client strings.
const userAgent = "Mozilla/5.0"

// Client fetches boundary GeoJSON over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a boundary client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPolygons downloads a GeoJSON feature collection from url and
// returns its polygonal geometries. Any transport, status, or parse
// failure wraps model.ErrDataSource.
func (c *Client) FetchPolygons(ctx context.Context, url string) ([]geom.Polygon, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", model.ErrDataSource, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching boundaries: %v", model.ErrDataSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: boundary endpoint returned status %d", model.ErrDataSource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading boundary response: %v", model.ErrDataSource, err)
	}

	return ParseFeatureCollection(body)
}

// LoadFile reads boundary polygons from a local GeoJSON file.
func LoadFile(path string) ([]geom.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", model.ErrDataSource, path, err)
	}
	return ParseFeatureCollection(data)
}

// ParseFeatureCollection parses GeoJSON and extracts polygonal geometries.
// A bare geometry document (no feature wrapper) is accepted too.
func ParseFeatureCollection(data []byte) ([]geom.Polygon, error) {
	var fc geom.GeoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err == nil && len(fc) > 0 {
		var polys []geom.Polygon
		for _, f := range fc {
			polys = append(polys, geo.PolygonsOf(f.Geometry)...)
		}
		if len(polys) == 0 {
			return nil, fmt.Errorf("%w: feature collection contains no polygons", model.ErrDataSource)
		}
		return polys, nil
	}

	g, err := geom.UnmarshalGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing GeoJSON: %v", model.ErrDataSource, err)
	}
	polys := geo.PolygonsOf(g)
	if len(polys) == 0 {
		return nil, fmt.Errorf("%w: GeoJSON contains no polygons", model.ErrDataSource)
	}
	return polys, nil
}
