package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/UnknownOlympus/compass/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "en", slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address, Language: "en"}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, models.ReasonTransport, failure.Classify(err))
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address, Language: "en"}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		assert.Equal(t, models.ReasonNoMatch, failure.Classify(err))
		mockClient.AssertExpectations(t)
	})

	t.Run("empty address", func(t *testing.T) {
		coords, err := provider.Geocode(ctx, "")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrGoogleEmptyAddress)
	})

	t.Run("successful geocoding", func(t *testing.T) {
		address := "Place Charles de Gaulle, Paris"
		req := &maps.GeocodingRequest{Address: address, Language: "en"}
		mockResponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 48.8738, Lng: 2.2950}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockResponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, 48.8738, coords.Latitude, 0.0001)
		require.InEpsilon(t, 2.2950, coords.Longitude, 0.0001)
		mockClient.AssertExpectations(t)
	})
}
