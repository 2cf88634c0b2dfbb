package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/models"
)

// Nominatim defaults.
const (
	NominatimBaseURL   = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent   = "compass/1.0 (https://github.com/UnknownOlympus/compass)"
	DefaultLanguage    = "en"
	nominatimTimeout   = 10 * time.Second
	lenFallbackSegment = 2
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
	language  string
	fallback  bool // retry with progressively shorter addresses
}

// NominatimOptions tunes a NominatimProvider. Zero values select the defaults.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Language  string
	Fallback  bool
	Timeout   time.Duration
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"` // Latitude as string
	Lon         string `json:"lon"` // Longitude as string
	DisplayName string `json:"display_name"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyAddress  = fmt.Errorf("nominatim provider got empty address: %w", failure.ErrNoMatch)
	ErrNominatimEmptyResponse = fmt.Errorf("nominatim API returned empty response: %w", failure.ErrNoMatch)
	ErrNominatimInvalidCoords = fmt.Errorf("nominatim API returned invalid coordinates: %w", failure.ErrMalformed)
)

// NewNominatimProvider creates a new Nominatim geocoding provider with its own HTTP client.
func NewNominatimProvider(opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = nominatimTimeout
	}

	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout}, opts, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	np := &NominatimProvider{
		client:    client,
		baseURL:   opts.BaseURL,
		log:       log,
		userAgent: opts.UserAgent,
		language:  opts.Language,
		fallback:  opts.Fallback,
	}
	if np.baseURL == "" {
		np.baseURL = NominatimBaseURL
	}
	// User-Agent MUST include valid contact info per Nominatim usage policy:
	// https://operations.osmfoundation.org/policies/nominatim/
	if np.userAgent == "" {
		np.userAgent = DefaultUserAgent
	}
	if np.language == "" {
		np.language = DefaultLanguage
	}

	return np
}

// Geocode converts an address to geographic coordinates using the Nominatim API.
// Only the top-ranked match is used.
//
// With fallback enabled, an address that returns no results is retried with
// progressively simpler variations:
// 1. Full address
// 2. Address without its last comma-separated component (usually the house number)
// 3. Address without its last two components
// 4. First component only (city, town or village)
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	if strings.TrimSpace(address) == "" {
		return nil, ErrNominatimEmptyAddress
	}

	variations := []string{address}
	if np.fallback {
		variations = generateAddressFallbacks(address)
	}

	for idx, variation := range variations {
		coords, err := np.geocodeSingleAddress(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", variation,
					"fallback_level", idx)
			}
			return coords, nil
		}

		// Anything but an empty answer ends the search.
		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Address variation returned no results",
			"variation", variation,
			"fallback_level", idx)
	}

	if len(variations) > 1 {
		np.log.WarnContext(ctx, "All address fallbacks exhausted",
			"address", address,
			"variations_tried", len(variations))
	}

	return nil, ErrNominatimEmptyResponse
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func generateAddressFallbacks(address string) []string {
	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))
		if len(parts) > lenFallbackSegment {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}
		addVariation(parts[0])
	}

	return variations
}

// geocodeSingleAddress performs a single geocoding request without fallback logic.
func (np *NominatimProvider) geocodeSingleAddress(ctx context.Context, address string) (*models.Coordinates, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1") // Only need the top result
	query.Set("accept-language", np.language)
	reqURL.RawQuery = query.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", np.language)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w: %w", err, failure.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s: %w",
			resp.StatusCode, string(body), failure.ErrTransport)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w: %w", err, failure.ErrTransport)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w: %w", err, failure.ErrMalformed)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	np.log.DebugContext(ctx, "Nominatim found result",
		"lat", results[0].Lat, "lon", results[0].Lon, "display_name", results[0].DisplayName)

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	coords := &models.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: out of range: %s,%s", ErrNominatimInvalidCoords, results[0].Lat, results[0].Lon)
	}

	return coords, nil
}
