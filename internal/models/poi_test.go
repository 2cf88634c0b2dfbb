package models_test

import (
	"testing"

	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategories(t *testing.T) {
	cats := models.DefaultCategories()

	assert.Equal(t, []models.Category{"amenity", "shop", "leisure", "tourism", "historic"}, cats)

	// Mutating the returned slice must not leak into later calls.
	cats[0] = models.CategoryHistoric
	assert.Equal(t, models.CategoryAmenity, models.DefaultCategories()[0])
}

func TestParseCategories(t *testing.T) {
	t.Run("keeps order and drops duplicates", func(t *testing.T) {
		cats, err := models.ParseCategories([]string{"Shop", " amenity", "", "shop"})

		require.NoError(t, err)
		assert.Equal(t, []models.Category{models.CategoryShop, models.CategoryAmenity}, cats)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		cats, err := models.ParseCategories([]string{"amenity", "highway"})

		require.Error(t, err)
		assert.Nil(t, cats)
		assert.Contains(t, err.Error(), `unsupported category: "highway"`)
	})
}

func TestBoundingBox(t *testing.T) {
	box := models.BoundingBox{West: 2.34, South: 48.85, East: 2.36, North: 48.86}

	assert.True(t, box.Contains(models.Coordinates{Latitude: 48.855, Longitude: 2.35}))
	assert.True(t, box.Contains(models.Coordinates{Latitude: 48.86, Longitude: 2.36}))
	assert.False(t, box.Contains(models.Coordinates{Latitude: 48.87, Longitude: 2.35}))

	bound := box.Bound()
	assert.InDelta(t, 2.34, bound.Min.Lon(), 1e-12)
	assert.InDelta(t, 48.86, bound.Max.Lat(), 1e-12)
}

func TestBoundingBox_CrossingAntimeridian(t *testing.T) {
	box := models.BoundingBox{West: 179.99, South: -0.01, East: -179.99, North: 0.01}

	require.True(t, box.CrossesAntimeridian())
	assert.True(t, box.Contains(models.Coordinates{Latitude: 0, Longitude: 179.995}))
	assert.True(t, box.Contains(models.Coordinates{Latitude: 0, Longitude: -179.995}))
	assert.False(t, box.Contains(models.Coordinates{Latitude: 0, Longitude: 0}))
	assert.False(t, box.Contains(models.Coordinates{Latitude: 0.02, Longitude: 180}))

	bound := box.Bound()
	assert.InDelta(t, 179.99, bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 180.01, bound.Max.Lon(), 1e-9)
}

func TestCoordinatesValid(t *testing.T) {
	assert.True(t, models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}.Valid())
	assert.False(t, models.Coordinates{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, models.Coordinates{Latitude: 0, Longitude: -181}.Valid())
}
