package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"imobdesk/server/internal/models"
)

func f(v float64) *float64 { return &v }

func sampleProperties() []models.Property {
	return []models.Property{
		{ID: "a", Title: "Apartamento Centro", City: "São Paulo", Price: 450000, Status: models.PropertyAvailable, Latitude: f(-23.55), Longitude: f(-46.63)},
		{ID: "b", Title: "Casa Pinheiros", City: "São Paulo", Price: 820000, Status: models.PropertyReserved, Latitude: f(-23.56), Longitude: f(-46.65)},
		{ID: "c", Title: "Cobertura Cambuí", City: "Campinas", Price: 610000, Status: models.PropertyAvailable, Latitude: f(-22.91), Longitude: f(-47.06)},
		{ID: "d", Title: "Sem endereco", City: "Campinas", Price: 300000, Status: models.PropertyAvailable},
	}
}

func TestFilterByBounds(t *testing.T) {
	props := sampleProperties()

	// Empty viewport keeps every geocoded listing
	all := FilterByBounds(props, Bounds{})
	assert.Len(t, all, 3)

	// Viewport around São Paulo excludes Campinas
	saoPaulo := FilterByBounds(props, Bounds{MinLat: -23.7, MinLon: -46.8, MaxLat: -23.4, MaxLon: -46.4})
	assert.Len(t, saoPaulo, 2)
	for _, p := range saoPaulo {
		assert.Equal(t, "São Paulo", p.City)
	}
}

func TestFilterByBoundsDropsUngecodedListings(t *testing.T) {
	out := FilterByBounds(sampleProperties(), Bounds{MinLat: -24, MinLon: -48, MaxLat: -22, MaxLon: -46})
	for _, p := range out {
		assert.NotNil(t, p.Latitude)
		assert.NotNil(t, p.Longitude)
	}
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(sampleProperties())

	assert.Len(t, fc.Features, 3)
	first := fc.Features[0]
	assert.Equal(t, "a", first.Properties["id"])
	assert.Equal(t, "Apartamento Centro", first.Properties["title"])

	point := first.Point()
	assert.InDelta(t, -46.63, point.Lon(), 0.0001)
	assert.InDelta(t, -23.55, point.Lat(), 0.0001)
}

func TestCityCenters(t *testing.T) {
	centers := CityCenters(sampleProperties())

	assert.Len(t, centers, 2)
	assert.Equal(t, "São Paulo", centers[0].City)
	assert.Equal(t, 2, centers[0].Count)
	assert.InDelta(t, -23.555, centers[0].Latitude, 0.001)
	assert.InDelta(t, -46.64, centers[0].Longitude, 0.001)

	assert.Equal(t, "Campinas", centers[1].City)
	assert.Equal(t, 1, centers[1].Count)
}
