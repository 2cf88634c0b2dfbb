package models

import (
	"fmt"
	"strings"
)

// NotAvailable is used for a POI name or category that the feature does not carry.
const NotAvailable = "N/A"

// Category is an OSM tag key used both to filter features and to label them.
type Category string

// Supported categories.
const (
	CategoryAmenity  Category = "amenity"
	CategoryShop     Category = "shop"
	CategoryLeisure  Category = "leisure"
	CategoryTourism  Category = "tourism"
	CategoryHistoric Category = "historic"
)

// DefaultCategories returns the default category list in precedence order.
// A fresh slice is returned on every call so callers may reorder it freely.
func DefaultCategories() []Category {
	return []Category{
		CategoryAmenity,
		CategoryShop,
		CategoryLeisure,
		CategoryTourism,
		CategoryHistoric,
	}
}

// ParseCategory validates a category name against the supported vocabulary.
func ParseCategory(name string) (Category, error) {
	cat := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range DefaultCategories() {
		if cat == known {
			return cat, nil
		}
	}

	return "", fmt.Errorf("unsupported category: %q", name)
}

// ParseCategories parses a list of category names, preserving their order
// and dropping duplicates and blank entries.
func ParseCategories(names []string) ([]Category, error) {
	seen := make(map[Category]bool, len(names))
	categories := make([]Category, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		cat, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if seen[cat] {
			continue
		}
		seen[cat] = true
		categories = append(categories, cat)
	}

	return categories, nil
}

// POI is a single point of interest found around a query center.
type POI struct {
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	DistanceFromCenterKm float64 `json:"distance_from_center_km"`
}
