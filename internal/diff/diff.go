// Package diff matches scraped products against the stored baseline and
// decides which of them need a notification and a store update.
package diff

import (
	"github.com/antzucaro/matchr"

	"StockScraper/internal/models"
)

// Kind is the classification of a single product against the baseline.
type Kind int

const (
	Unmatched Kind = iota
	Unchanged
	Changed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "unmatched"
	}
}

// Outcome is the result for one product. RecordID and Baseline are empty
// for unmatched products.
type Outcome struct {
	Kind     Kind
	Product  models.Product
	RecordID string
	Baseline models.BaselineRecord
}

// Result holds every outcome in scrape order, plus the two work lists
// derived from the changed outcomes. Changes[i] and Updates[i] always refer
// to the same product.
type Result struct {
	Outcomes []Outcome
	Changes  []models.ChangeRecord
	Updates  []models.BaselineUpdate

	Unmatched int
	Unchanged int
}

// Products returns the changed products in scrape order.
func (r Result) Products() []models.Product {
	products := make([]models.Product, 0, len(r.Changes))
	for _, c := range r.Changes {
		products = append(products, c.Product)
	}
	return products
}

// Compute classifies every product against the baseline.
//
// Products are matched by exact, case-sensitive name. When the baseline
// holds several records with the same name the first one in baseline order
// is used; which record is "first" depends on the store and is otherwise
// unspecified. Only stock status is compared: a price change alone is not a
// change.
func Compute(products []models.Product, baseline []models.BaselineRecord) Result {
	index := make(map[string]int, len(baseline))
	for i, rec := range baseline {
		if _, seen := index[rec.Name]; !seen {
			index[rec.Name] = i
		}
	}

	res := Result{Outcomes: make([]Outcome, 0, len(products))}
	for _, p := range products {
		i, ok := index[p.Name]
		if !ok {
			res.Outcomes = append(res.Outcomes, Outcome{Kind: Unmatched, Product: p})
			res.Unmatched++
			continue
		}

		rec := baseline[i]
		if p.StockStatus == rec.Stock {
			res.Outcomes = append(res.Outcomes, Outcome{Kind: Unchanged, Product: p, RecordID: rec.ID, Baseline: rec})
			res.Unchanged++
			continue
		}

		res.Outcomes = append(res.Outcomes, Outcome{Kind: Changed, Product: p, RecordID: rec.ID, Baseline: rec})
		res.Changes = append(res.Changes, models.ChangeRecord{Product: p, RecordID: rec.ID})
		res.Updates = append(res.Updates, models.BaselineUpdate{
			ID: rec.ID,
			Fields: models.UpdateFields{
				Price: p.Price,
				Stock: p.StockStatus,
			},
		})
	}
	return res
}

// Closest returns the tracked name most similar to name, for diagnosing
// products that did not match. It never influences matching.
func Closest(name string, baseline []models.BaselineRecord) (string, float64) {
	var best string
	var bestScore float64
	for _, rec := range baseline {
		score := matchr.JaroWinkler(name, rec.Name, false)
		if score > bestScore {
			best = rec.Name
			bestScore = score
		}
	}
	return best, bestScore
}
