package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StockScraper/internal/models"
	"StockScraper/utils"
)

// Selectors of the catalog markup.
const (
	productSelector = ".product"
	nameSelector    = ".product-name"
	typeSelector    = "span > span.product-flash"
	priceSelector   = ".price"
	imageSelector   = ".product-image img"
)

// ParseCatalog extracts one raw record per product container of a rendered
// catalog page. A missing child element leaves its field out of the record;
// relative image sources are resolved against pageURL.
func ParseCatalog(pageHTML, pageURL string) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse catalog html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	records := []models.RawRecord{}
	doc.Find(productSelector).Each(func(_ int, s *goquery.Selection) {
		rec := models.RawRecord{
			Fields: map[string]string{},
			Tags:   classList(s),
		}
		setText(rec.Fields, models.FieldName, s.Find(nameSelector))
		setText(rec.Fields, models.FieldType, s.Find(typeSelector))
		setText(rec.Fields, models.FieldPrice, s.Find(priceSelector))

		if img := s.Find(imageSelector).First(); img.Length() > 0 {
			src, _ := img.Attr("src")
			rec.Fields[models.FieldImageURL] = resolve(base, src)
		}
		records = append(records, rec)
	})
	return records, nil
}

func setText(fields map[string]string, key string, sel *goquery.Selection) {
	first := sel.First()
	if first.Length() == 0 {
		return
	}
	fields[key] = utils.VisibleText(first.Nodes[0])
}

func classList(s *goquery.Selection) []string {
	class, _ := s.Attr("class")
	return utils.UniqueStrings(strings.Fields(class))
}

func resolve(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
