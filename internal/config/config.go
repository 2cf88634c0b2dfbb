package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the compass service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP server (API, health check and metrics).
// - AddrPrefix: Prefix prepended to every address before geocoding.
// - Geocoder: Geocoding provider settings.
// - Overpass: Feature query service settings.
// - POI: Defaults for POI retrieval.
type Config struct {
	Env        string         // Env is the current environment: local, dev, prod.
	Port       int            // Port is the HTTP server port.
	AddrPrefix string         // Address prefix for more accurate geocoding
	Geocoder   GeocoderConfig // Geocoder holds the geocoding provider configuration
	Overpass   OverpassConfig // Overpass holds the feature query configuration
	POI        POIConfig      // POI holds retrieval defaults
}

// GeocoderConfig configures the geocoding provider.
type GeocoderConfig struct {
	Provider  string        // google, nominatim or visicom
	APIKey    string        // API key (google, visicom)
	BaseURL   string        // Endpoint override
	UserAgent string        // User-Agent sent upstream
	Language  string        // Preferred result language
	Fallback  bool          // Progressive address fallback
	Timeout   time.Duration // Per-request timeout
}

// OverpassConfig configures the Overpass API client.
type OverpassConfig struct {
	URL          string        // Interpreter endpoint
	Timeout      time.Duration // HTTP timeout
	QueryTimeout int           // Server-side query timeout in seconds
}

// POIConfig holds the defaults used when a request leaves them unset.
type POIConfig struct {
	RadiusKm   float64  // Search radius
	Categories []string // Category precedence
	EarthModel string   // ellipsoid or sphere
}

// MustLoad loads the configuration from the environment and an optional YAML
// file named by COMPASS_CONFIG_FILE, and returns a Config struct.
// Environment variables use the COMPASS_ prefix with dots replaced by
// underscores, e.g. COMPASS_GEOCODER_PROVIDER.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("address_prefix", "")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.user_agent", "compass/1.0 (https://github.com/UnknownOlympus/compass)")
	v.SetDefault("geocoder.language", "en")
	v.SetDefault("geocoder.fallback", "false")
	v.SetDefault("geocoder.timeout", "10s")
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout", "60s")
	v.SetDefault("overpass.query_timeout", "25")
	v.SetDefault("poi.radius_km", "0.5")
	v.SetDefault("poi.categories", "amenity,shop,leisure,tourism,historic")
	v.SetDefault("poi.earth_model", "ellipsoid")

	if file, ok := os.LookupEnv("COMPASS_CONFIG_FILE"); ok && file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	v.SetEnvPrefix("COMPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		panic("failed to parse port for the HTTP server from configuration")
	}

	geocoderTimeout, err := time.ParseDuration(v.GetString("geocoder.timeout"))
	if err != nil {
		panic("failed to parse geocoder timeout from configuration")
	}

	fallback, err := strconv.ParseBool(v.GetString("geocoder.fallback"))
	if err != nil {
		panic("failed to parse geocoder fallback from configuration, must be a boolean")
	}

	overpassTimeout, err := time.ParseDuration(v.GetString("overpass.timeout"))
	if err != nil {
		panic("failed to parse overpass timeout from configuration")
	}

	queryTimeout, err := strconv.Atoi(v.GetString("overpass.query_timeout"))
	if err != nil {
		panic("failed to parse overpass query timeout from configuration, must be an integer")
	}

	radius, err := strconv.ParseFloat(v.GetString("poi.radius_km"), 64)
	if err != nil || radius <= 0 {
		panic("failed to parse POI radius from configuration, must be a positive number")
	}

	return &Config{
		Env:        v.GetString("env"),
		Port:       port,
		AddrPrefix: v.GetString("address_prefix"),
		Geocoder: GeocoderConfig{
			Provider:  v.GetString("geocoder.provider"),
			APIKey:    v.GetString("geocoder.api_key"),
			BaseURL:   v.GetString("geocoder.base_url"),
			UserAgent: v.GetString("geocoder.user_agent"),
			Language:  v.GetString("geocoder.language"),
			Fallback:  fallback,
			Timeout:   geocoderTimeout,
		},
		Overpass: OverpassConfig{
			URL:          v.GetString("overpass.url"),
			Timeout:      overpassTimeout,
			QueryTimeout: queryTimeout,
		},
		POI: POIConfig{
			RadiusKm:   radius,
			Categories: listValue(v, "poi.categories"),
			EarthModel: v.GetString("poi.earth_model"),
		},
	}
}

// listValue reads a key that may hold a YAML list or a comma-separated string.
func listValue(v *viper.Viper, key string) []string {
	items := []string{}
	for _, value := range v.GetStringSlice(key) {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
