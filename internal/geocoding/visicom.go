package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/models"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

const visicomTimeout = 10 * time.Second

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Visicom API
	apiKey  string       // API key with geocoding access
	log     *slog.Logger // Logger for logging operations
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = fmt.Errorf("visicom API returned empty response: %w", failure.ErrNoMatch)
	ErrVisicomEmptyAddress  = fmt.Errorf("visicom provider got empty address: %w", failure.ErrNoMatch)
	ErrVisicomInvalidCoords = fmt.Errorf("visicom API returned invalid coordinates: %w", failure.ErrMalformed)
	ErrVisicomUnauthorized  = fmt.Errorf("visicom API unauthorized (invalid API key): %w", failure.ErrTransport)
)

// Visicom API response (simplified for geocoding use-case).
type visicomResponse struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(apiKey, baseURL string, timeout time.Duration, log *slog.Logger) *VisicomProvider {
	if timeout <= 0 {
		timeout = visicomTimeout
	}

	return NewVisicomProviderWithClient(&http.Client{Timeout: timeout}, apiKey, baseURL, log)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(client HTTPClient, apiKey, baseURL string, log *slog.Logger) *VisicomProvider {
	if baseURL == "" {
		baseURL = VisicomBaseURL
	}

	return &VisicomProvider{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// Geocode converts address into geographic coordinates using Visicom API.
func (vp *VisicomProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	const coordsListLength = 2

	vp.log.DebugContext(ctx, "Geocoding using Visicom", "address", address)

	if strings.TrimSpace(address) == "" {
		return nil, ErrVisicomEmptyAddress
	}

	reqURL, err := url.Parse(vp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", address)
	query.Set("limit", "1")
	query.Set("key", vp.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w: %w", err, failure.ErrTransport)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrVisicomUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		vp.log.ErrorContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("visicom API returned status %d: %s: %w",
			resp.StatusCode, string(body), failure.ErrTransport)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w: %w", err, failure.ErrTransport)
	}

	vp.log.DebugContext(ctx, "Visicom raw response", "body", string(body))

	var result visicomResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode visicom response: %w: %w", err, failure.ErrMalformed)
	}

	coords := result.Geometry.Coordinates
	if len(coords) == 0 {
		return nil, ErrVisicomEmptyResponse
	}

	if len(coords) != coordsListLength {
		return nil, ErrVisicomInvalidCoords
	}

	lon := coords[0]
	lat := coords[1]

	vp.log.DebugContext(ctx, "Visicom found result", "address", address, "lat", lat, "lon", lon)

	return &models.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
