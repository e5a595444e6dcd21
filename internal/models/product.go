package models

// StockStatus is the availability of a catalog entry. The string values are
// the ones stored in the baseline and shown in notifications.
type StockStatus string

const (
	InStock    StockStatus = "In Stock"
	OutOfStock StockStatus = "Out of Stock"
	Unknown    StockStatus = "Status Unknown"
)

// Keys of a RawRecord's field bag.
const (
	FieldName     = "name"
	FieldType     = "product"
	FieldPrice    = "price"
	FieldImageURL = "imageUrl"
)

// Class tags on a product container that carry stock state.
const (
	TagOutOfStock = "outofstock"
	TagInStock    = "instock"
)

// RawRecord is what the renderer extracted for a single product container.
// Any field may be absent from Fields.
type RawRecord struct {
	Fields map[string]string
	Tags   []string
}

// Product is a normalized catalog entry for one scrape cycle.
type Product struct {
	Name        string      `json:"name"`
	ProductType string      `json:"product"`
	Price       string      `json:"price"`
	ImageURL    string      `json:"imageUrl"`
	StockStatus StockStatus `json:"stockStatus"`
}

// BaselineRecord is the last known state of a tracked product. Name is the
// join key against scraped products.
type BaselineRecord struct {
	ID    string
	Name  string
	Price string
	Stock StockStatus
}

// ChangeRecord pairs a product with the baseline record it flipped against.
type ChangeRecord struct {
	Product  Product
	RecordID string
}

// UpdateFields are the only two baseline fields the pipeline writes.
type UpdateFields struct {
	Price string      `json:"Price"`
	Stock StockStatus `json:"Stock"`
}

// BaselineUpdate overwrites price and stock on one baseline record.
type BaselineUpdate struct {
	ID     string       `json:"id"`
	Fields UpdateFields `json:"fields"`
}
