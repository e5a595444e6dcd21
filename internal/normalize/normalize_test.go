package normalize

import (
	"testing"

	"StockScraper/internal/models"

	"github.com/stretchr/testify/require"
)

func TestStockStatus(t *testing.T) {
	testCases := []struct {
		name     string
		tags     []string
		expected models.StockStatus
	}{
		{"In stock", []string{"product", "instock"}, models.InStock},
		{"Out of stock", []string{"product", "outofstock"}, models.OutOfStock},
		{"Both tags", []string{"instock", "outofstock"}, models.OutOfStock},
		{"No tags", nil, models.Unknown},
		{"Unrelated tags", []string{"sale", "featured"}, models.Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, StockStatus(tc.tags))
		})
	}
}

func TestProductFullRecord(t *testing.T) {
	raw := models.RawRecord{
		Fields: map[string]string{
			models.FieldName:     "  Matcha A ",
			models.FieldType:     "New",
			models.FieldPrice:    "$10.00",
			models.FieldImageURL: "https://shop.example/a.jpg",
		},
		Tags: []string{"product", "instock"},
	}

	require.Equal(t, models.Product{
		Name:        "Matcha A",
		ProductType: "New",
		Price:       "$10.00",
		ImageURL:    "https://shop.example/a.jpg",
		StockStatus: models.InStock,
	}, Product(raw))
}

func TestProductMissingFields(t *testing.T) {
	p := Product(models.RawRecord{Fields: map[string]string{models.FieldName: "Matcha B"}})

	require.Equal(t, "Matcha B", p.Name)
	require.Equal(t, TypeNotFound, p.ProductType)
	require.Equal(t, PriceNotFound, p.Price)
	require.Equal(t, ImageNotFound, p.ImageURL)
	require.Equal(t, models.Unknown, p.StockStatus)

	empty := Product(models.RawRecord{})
	require.Equal(t, NameNotFound, empty.Name)
}

func TestProductsKeepsOrderAndCount(t *testing.T) {
	raws := []models.RawRecord{
		{Fields: map[string]string{models.FieldName: "first"}},
		{},
		{Fields: map[string]string{models.FieldName: "third"}, Tags: []string{"outofstock"}},
	}

	products := Products(raws)
	require.Len(t, products, 3)
	require.Equal(t, "first", products[0].Name)
	require.Equal(t, NameNotFound, products[1].Name)
	require.Equal(t, "third", products[2].Name)
	require.Equal(t, models.OutOfStock, products[2].StockStatus)
}
