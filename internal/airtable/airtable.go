// Package airtable implements the baseline store on top of the Airtable
// REST API.
package airtable

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"StockScraper/internal/baseline"
	"StockScraper/internal/models"
)

const (
	// DefaultURL is the public API host.
	DefaultURL = "https://api.airtable.com"
	// MaxRecordsPerRequest is Airtable's cap for create/update calls.
	MaxRecordsPerRequest = 10

	fieldItem  = "Item"
	fieldPrice = "Price"
	fieldStock = "Stock"

	tablePath = "/v0/{base}/{table}"
)

// Config addresses one table.
type Config struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Table   string
}

// Store reads and updates baseline records kept in an Airtable table. The
// Item column holds the product name.
type Store struct {
	client *resty.Client
	conf   Config
}

var (
	_ baseline.Store   = (*Store)(nil)
	_ baseline.Limited = (*Store)(nil)
)

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type updateRequest struct {
	Records []models.BaselineUpdate `json:"records"`
}

// New builds a store. A nil client gets a default resty client.
func New(client *resty.Client, conf Config) *Store {
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultURL
	}
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
	}
	client.SetBaseURL(conf.BaseURL).SetAuthToken(conf.APIKey)
	return &Store{client: client, conf: conf}
}

// MaxBatch is the per-request update cap.
func (s *Store) MaxBatch() int {
	return MaxRecordsPerRequest
}

// ReadAll pages through the whole table.
func (s *Store) ReadAll(ctx context.Context) ([]models.BaselineRecord, error) {
	var records []models.BaselineRecord
	offset := ""
	for {
		var page listResponse
		var failure apiError
		req := s.client.R().
			SetContext(ctx).
			SetPathParams(map[string]string{"base": s.conf.BaseID, "table": s.conf.Table}).
			SetResult(&page).
			SetError(&failure)
		if offset != "" {
			req.SetQueryParam("offset", offset)
		}

		res, err := req.Get(tablePath)
		if err != nil {
			return nil, fmt.Errorf("list airtable records: %w", err)
		}
		if res.IsError() {
			return nil, fmt.Errorf("list airtable records: %s: %s", res.Status(), failure.Error.Message)
		}

		for _, r := range page.Records {
			records = append(records, models.BaselineRecord{
				ID:    r.ID,
				Name:  stringField(r.Fields, fieldItem),
				Price: stringField(r.Fields, fieldPrice),
				Stock: models.StockStatus(stringField(r.Fields, fieldStock)),
			})
		}

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Update patches Price and Stock on up to MaxRecordsPerRequest records.
// Other columns are left untouched by PATCH semantics.
func (s *Store) Update(ctx context.Context, batch []models.BaselineUpdate) error {
	if len(batch) == 0 {
		return nil
	}
	if len(batch) > MaxRecordsPerRequest {
		return fmt.Errorf("airtable update of %d records exceeds the %d record cap", len(batch), MaxRecordsPerRequest)
	}

	var failure apiError
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"base": s.conf.BaseID, "table": s.conf.Table}).
		SetBody(updateRequest{Records: batch}).
		SetError(&failure).
		Patch(tablePath)
	if err != nil {
		return fmt.Errorf("update airtable records: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("update airtable records: %s: %s", res.Status(), failure.Error.Message)
	}
	return nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
