package notify

import (
	"fmt"
	"strings"

	"StockScraper/internal/models"
)

// lineSeparator joins digest lines with a blank line between entries.
const lineSeparator = "\n\n"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five markup-significant characters with entities.
// It must run on interpolated values only, never on the formatting tags.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatLine renders one changed product as a digest line.
func FormatLine(p models.Product) string {
	return fmt.Sprintf("<b>Item:</b> %s <i>Price:</i> %s <b>%s</b>",
		EscapeHTML(p.Name),
		EscapeHTML(p.Price),
		EscapeHTML(string(p.StockStatus)),
	)
}

// Digest joins the lines of all products in the given order.
func Digest(products []models.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, FormatLine(p))
	}
	return strings.Join(lines, lineSeparator)
}
