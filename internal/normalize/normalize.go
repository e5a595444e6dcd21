// Package normalize turns renderer output into canonical products.
package normalize

import (
	"strings"

	"StockScraper/internal/models"
)

// Placeholders used when the catalog markup lacks a field.
const (
	NameNotFound  = "Name not found"
	TypeNotFound  = "Product Type not found"
	PriceNotFound = "Price not found"
	ImageNotFound = "Image not found"
)

// Product maps one raw record to a Product. It never fails: an absent field
// is replaced with its placeholder.
func Product(raw models.RawRecord) models.Product {
	return models.Product{
		Name:        field(raw, models.FieldName, NameNotFound),
		ProductType: field(raw, models.FieldType, TypeNotFound),
		Price:       field(raw, models.FieldPrice, PriceNotFound),
		ImageURL:    field(raw, models.FieldImageURL, ImageNotFound),
		StockStatus: StockStatus(raw.Tags),
	}
}

// Products normalizes a whole render result, keeping input order.
func Products(raws []models.RawRecord) []models.Product {
	products := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, Product(raw))
	}
	return products
}

// StockStatus classifies a container by its class tags. Out of stock is
// checked first, so it wins when both tags are present.
func StockStatus(tags []string) models.StockStatus {
	switch {
	case hasTag(tags, models.TagOutOfStock):
		return models.OutOfStock
	case hasTag(tags, models.TagInStock):
		return models.InStock
	default:
		return models.Unknown
	}
}

func field(raw models.RawRecord, key, placeholder string) string {
	v, ok := raw.Fields[key]
	if !ok {
		return placeholder
	}
	return strings.TrimSpace(v)
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
