package service_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/geodesy"
	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/UnknownOlympus/compass/internal/poi"
	"github.com/UnknownOlympus/compass/internal/service"
	"github.com/UnknownOlympus/compass/test/mocks"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var paris = models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}

type fixture struct {
	provider *mocks.Provider
	source   *mocks.Source
	metrics  *metrics.Metrics
	explorer *service.Explorer
}

func newFixture(t *testing.T, opts service.Options) fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	provider := mocks.NewProvider(t)
	source := mocks.NewSource(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	retriever := poi.NewRetriever(source, geodesy.ModelEllipsoid, logger)

	if opts.ProviderName == "" {
		opts.ProviderName = string(geocoding.ProviderTypeNominatim)
	}
	if opts.SourceName == "" {
		opts.SourceName = "overpass"
	}

	return fixture{
		provider: provider,
		source:   source,
		metrics:  appMetrics,
		explorer: service.NewExplorer(logger, provider, retriever, appMetrics, opts),
	}
}

func TestExplorer_GeocodeAddress(t *testing.T) {
	ctx := t.Context()

	t.Run("resolved address", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.provider.On("Geocode", ctx, "Paris").Return(&paris, nil).Once()

		result := fx.explorer.GeocodeAddress(ctx, "Paris")

		require.True(t, result.OK())
		assert.Equal(t, models.ReasonOK, result.Reason)
		assert.Equal(t, paris, *result.Coordinates)
		require.NoError(t, result.Err)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Lookups.WithLabelValues(service.OpGeocode, "ok")), 0)
	})

	t.Run("address prefix is prepended", func(t *testing.T) {
		fx := newFixture(t, service.Options{AddressPrefix: "France, "})
		fx.provider.On("Geocode", ctx, "France, Paris").Return(&paris, nil).Once()

		result := fx.explorer.GeocodeAddress(ctx, "Paris")

		require.True(t, result.OK())
		assert.Equal(t, "Paris", result.Address)
	})

	t.Run("empty address skips the prefix", func(t *testing.T) {
		fx := newFixture(t, service.Options{AddressPrefix: "France, "})
		fx.provider.On("Geocode", ctx, "").Return(nil, geocoding.ErrNominatimEmptyAddress).Once()

		result := fx.explorer.GeocodeAddress(ctx, "")

		assert.False(t, result.OK())
		assert.Nil(t, result.Coordinates)
		assert.Equal(t, models.ReasonNoMatch, result.Reason)
	})

	t.Run("unresolvable address", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.provider.On("Geocode", ctx, "qwzxv").Return(nil, geocoding.ErrNominatimEmptyResponse).Once()

		result := fx.explorer.GeocodeAddress(ctx, "qwzxv")

		assert.False(t, result.OK())
		assert.Nil(t, result.Coordinates)
		assert.Equal(t, models.ReasonNoMatch, result.Reason)
		require.ErrorIs(t, result.Err, geocoding.ErrNominatimEmptyResponse)
		assert.Zero(t, testutil.ToFloat64(fx.metrics.UpstreamErrors.WithLabelValues("nominatim", "no_match")))
	})

	t.Run("provider returns neither coordinates nor error", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.provider.On("Geocode", ctx, "Nowhere").Return(nil, nil).Once()

		result := fx.explorer.GeocodeAddress(ctx, "Nowhere")

		assert.Nil(t, result.Coordinates)
		assert.Equal(t, models.ReasonNoMatch, result.Reason)
	})

	t.Run("service error", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		upstreamErr := failure.ErrTransport
		fx.provider.On("Geocode", ctx, "Paris").Return(nil, upstreamErr).Once()

		result := fx.explorer.GeocodeAddress(ctx, "Paris")

		assert.Nil(t, result.Coordinates)
		assert.Equal(t, models.ReasonTransport, result.Reason)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.UpstreamErrors.WithLabelValues("nominatim", "transport")), 0)
	})

	t.Run("panicking provider is recovered", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.provider.On("Geocode", ctx, "Paris").
			Run(func(_ mock.Arguments) { panic("boom") }).
			Return(nil, nil).Once()

		var result models.GeocodeResult
		require.NotPanics(t, func() { result = fx.explorer.GeocodeAddress(ctx, "Paris") })

		assert.Nil(t, result.Coordinates)
		assert.Equal(t, models.ReasonUnknown, result.Reason)
		assert.ErrorContains(t, result.Err, "boom")
	})
}

func TestExplorer_NearbyPOIs(t *testing.T) {
	ctx := t.Context()

	t.Run("defaults are applied", func(t *testing.T) {
		fx := newFixture(t, service.Options{RadiusKm: 1, Categories: []models.Category{models.CategoryShop}})
		expectedBox := geodesy.BoundingBox(geodesy.ModelEllipsoid, paris, 1)
		features := []poi.Feature{{
			Tags:     map[string]string{"name": "Boulangerie", "shop": "bakery", "amenity": "cafe"},
			Geometry: orb.Point{2.3530, 48.8570},
		}}
		fx.source.On("Features", ctx, expectedBox, []models.Category{models.CategoryShop}).Return(features, nil).Once()

		result := fx.explorer.NearbyPOIs(ctx, paris, 0, nil)

		require.True(t, result.OK())
		assert.Equal(t, models.ReasonOK, result.Reason)
		assert.InDelta(t, 1, result.RadiusKm, 0)
		assert.Equal(t, expectedBox, result.BoundingBox)
		require.Len(t, result.POIs, 1)
		assert.Equal(t, "shop", result.POIs[0].Category)
	})

	t.Run("no features is not a failure", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.source.On("Features", ctx, mock.Anything, models.DefaultCategories()).Return([]poi.Feature{}, nil).Once()

		result := fx.explorer.NearbyPOIs(ctx, paris, 0.5, nil)

		assert.True(t, result.OK())
		assert.Equal(t, models.ReasonNoMatch, result.Reason)
		require.NotNil(t, result.POIs)
		assert.Empty(t, result.POIs)
		require.NoError(t, result.Err)
	})

	t.Run("query failure is distinguishable from no match", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.source.On("Features", ctx, mock.Anything, mock.Anything).Return(nil, failure.ErrMalformed).Once()

		result := fx.explorer.NearbyPOIs(ctx, paris, 0.5, nil)

		assert.False(t, result.OK())
		assert.Equal(t, models.ReasonMalformed, result.Reason)
		require.NotNil(t, result.POIs)
		assert.Empty(t, result.POIs)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.UpstreamErrors.WithLabelValues("overpass", "malformed")), 0)
	})

	t.Run("negative radius is invalid input", func(t *testing.T) {
		fx := newFixture(t, service.Options{})

		result := fx.explorer.NearbyPOIs(ctx, paris, -2, nil)

		assert.Equal(t, models.ReasonInvalidInput, result.Reason)
		assert.Empty(t, result.POIs)
	})

	t.Run("panicking source is recovered", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.source.On("Features", ctx, mock.Anything, mock.Anything).
			Run(func(_ mock.Arguments) { panic("index out of range") }).
			Return(nil, nil).Once()

		var result models.POIResult
		require.NotPanics(t, func() { result = fx.explorer.NearbyPOIs(ctx, paris, 0.5, nil) })

		assert.Equal(t, models.ReasonUnknown, result.Reason)
		require.NotNil(t, result.POIs)
		assert.Empty(t, result.POIs)
	})
}

func TestExplorer_NearbyAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("coordinates feed the retrieval", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		expectedBox := geodesy.BoundingBox(geodesy.ModelEllipsoid, paris, 0.5)
		fx.provider.On("Geocode", ctx, "Paris").Return(&paris, nil).Once()
		fx.source.On("Features", ctx, expectedBox, models.DefaultCategories()).Return([]poi.Feature{{
			Tags:     map[string]string{"amenity": "cafe", "shop": "bakery"},
			Geometry: orb.Point{2.3525, 48.8570},
		}}, nil).Once()

		result := fx.explorer.NearbyAddress(ctx, "Paris", 0, nil)

		require.Equal(t, models.ReasonOK, result.Reason)
		assert.Equal(t, paris, result.Center)
		require.Len(t, result.POIs, 1)
		assert.Equal(t, "amenity", result.POIs[0].Category)
		assert.Equal(t, models.NotAvailable, result.POIs[0].Name)
	})

	t.Run("geocoding miss stops the chain", func(t *testing.T) {
		fx := newFixture(t, service.Options{})
		fx.provider.On("Geocode", ctx, "qwzxv").Return(nil, geocoding.ErrNominatimEmptyResponse).Once()

		result := fx.explorer.NearbyAddress(ctx, "qwzxv", 0.5, nil)

		assert.Equal(t, models.ReasonNoMatch, result.Reason)
		require.NotNil(t, result.POIs)
		assert.Empty(t, result.POIs)
		fx.source.AssertNotCalled(t, "Features", mock.Anything, mock.Anything, mock.Anything)
	})
}
