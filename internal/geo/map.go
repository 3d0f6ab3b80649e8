// Package geo shapes listing coordinates into the payloads the map view
// consumes.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"imobdesk/server/internal/models"
)

// Bounds is a map viewport
type Bounds struct {
	MinLat float64 `form:"min_lat"`
	MinLon float64 `form:"min_lon"`
	MaxLat float64 `form:"max_lat"`
	MaxLon float64 `form:"max_lon"`
}

// IsZero reports whether no viewport was supplied
func (b Bounds) IsZero() bool {
	return b.MinLat == 0 && b.MinLon == 0 && b.MaxLat == 0 && b.MaxLon == 0
}

func (b Bounds) bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// FilterByBounds keeps listings with coordinates inside the viewport.
// Listings without coordinates are always dropped; an empty viewport
// keeps everything that is geocoded.
func FilterByBounds(properties []models.Property, bounds Bounds) []models.Property {
	var out []models.Property
	box := bounds.bound()
	for _, p := range properties {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		point := orb.Point{*p.Longitude, *p.Latitude}
		if bounds.IsZero() || box.Contains(point) {
			out = append(out, p)
		}
	}
	return out
}

// FeatureCollection renders listings as GeoJSON point features for the
// map view
func FeatureCollection(properties []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range properties {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		feature := geojson.NewFeature(orb.Point{*p.Longitude, *p.Latitude})
		feature.Properties = geojson.Properties{
			"id":     p.ID,
			"title":  p.Title,
			"price":  p.Price,
			"status": p.Status,
			"city":   p.City,
		}
		fc.Append(feature)
	}
	return fc
}

// CityCenter is the centroid of a city's geocoded listings
type CityCenter struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}

// CityCenters aggregates listings per city so the map can offer jump
// targets
func CityCenters(properties []models.Property) []CityCenter {
	type accumulator struct {
		points orb.MultiPoint
	}
	byCity := make(map[string]*accumulator)
	var order []string

	for _, p := range properties {
		if p.Latitude == nil || p.Longitude == nil || p.City == "" {
			continue
		}
		acc, ok := byCity[p.City]
		if !ok {
			acc = &accumulator{}
			byCity[p.City] = acc
			order = append(order, p.City)
		}
		acc.points = append(acc.points, orb.Point{*p.Longitude, *p.Latitude})
	}

	centers := make([]CityCenter, 0, len(order))
	for _, city := range order {
		points := byCity[city].points
		center := points.Bound().Center()
		centers = append(centers, CityCenter{
			City:      city,
			Latitude:  center.Lat(),
			Longitude: center.Lon(),
			Count:     len(points),
		})
	}
	return centers
}
