// Package overpass implements poi.Source on top of the OpenStreetMap Overpass API.
package overpass

import (
	"context"
	"encoding/json"
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
	"github.com/UnknownOlympus/compass/internal/poi"
)

// Overpass defaults.
const (
	DefaultURL          = "https://overpass-api.de/api/interpreter"
	DefaultQueryTimeout = 25 // seconds, enforced by the Overpass server
	httpTimeout         = 60 * time.Second
)

// Errors returned by the Overpass client.
var (
	ErrOverpassStatus  = fmt.Errorf("overpass API returned an error status: %w", failure.ErrTransport)
	ErrOverpassRuntime = fmt.Errorf("overpass API reported a runtime error: %w", failure.ErrTransport)
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	URL          string
	UserAgent    string
	QueryTimeout int           // server-side [timeout:N] in seconds
	Timeout      time.Duration // HTTP client timeout
}

// Client queries the Overpass API for tagged features.
type Client struct {
	client       HTTPClient
	url          string
	userAgent    string
	queryTimeout int
	log          *slog.Logger
}

var _ poi.Source = (*Client)(nil)

// NewClient creates an Overpass client with its own HTTP client.
func NewClient(opts Options, log *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = httpTimeout
	}

	return NewClientWithHTTP(&http.Client{Timeout: timeout}, opts, log)
}

// NewClientWithHTTP creates an Overpass client around a custom HTTP client.
func NewClientWithHTTP(client HTTPClient, opts Options, log *slog.Logger) *Client {
	c := &Client{
		client:       client,
		url:          opts.URL,
		userAgent:    opts.UserAgent,
		queryTimeout: opts.QueryTimeout,
		log:          log,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.queryTimeout <= 0 {
		c.queryTimeout = DefaultQueryTimeout
	}

	return c
}

// Features returns every node, way and relation inside bbox carrying any of the categories.
func (c *Client) Features(
	ctx context.Context,
	bbox models.BoundingBox,
	categories []models.Category,
) ([]poi.Feature, error) {
	query := BuildQuery(bbox, categories, c.queryTimeout)
	c.log.DebugContext(ctx, "Overpass query", "query", query)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute overpass request: %w: %w", err, failure.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.ErrorContext(ctx, "Overpass API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", ErrOverpassStatus, resp.StatusCode)
	}

	var result response
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w: %w", err, failure.ErrMalformed)
	}

	if strings.Contains(result.Remark, "error") {
		c.log.ErrorContext(ctx, "Overpass runtime error", "remark", result.Remark)
		return nil, fmt.Errorf("%w: %s", ErrOverpassRuntime, result.Remark)
	}

	features := make([]poi.Feature, 0, len(result.Elements))
	for _, el := range result.Elements {
		geom := el.geometry()
		if geom == nil {
			c.log.DebugContext(ctx, "Dropping element without usable geometry", "type", el.Type, "id", el.ID)
			continue
		}
		features = append(features, poi.Feature{
			Type:     string(el.Type),
			ID:       el.ID,
			Tags:     el.Tags,
			Geometry: geom,
		})
	}

	c.log.DebugContext(ctx, "Overpass returned features", "elements", len(result.Elements), "features", len(features))

	return features, nil
}

// BuildQuery renders the Overpass QL union of one nwr clause per category,
// in category order, each restricted to bbox. The box is not a global setting
// so that out geom returns complete outlines.
func BuildQuery(bbox models.BoundingBox, categories []models.Category, timeoutSeconds int) string {
	area := "(" + formatCoord(bbox.South) + "," + formatCoord(bbox.West) + "," +
		formatCoord(bbox.North) + "," + formatCoord(bbox.East) + ")"

	var b strings.Builder

	b.WriteString("[out:json][timeout:")
	b.WriteString(strconv.Itoa(timeoutSeconds))
	b.WriteString("];(")
	for _, cat := range categories {
		b.WriteString("nwr[")
		b.WriteString(strconv.Quote(string(cat)))
		b.WriteString("]")
		b.WriteString(area)
		b.WriteString(";")
	}
	b.WriteString(");out geom;")

	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
}
