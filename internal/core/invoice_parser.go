package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// LineParser turns raw invoice text into structured line records. Implementations
// are tuned to one vendor layout; adding a vendor means adding an implementation,
// not touching normalization or ingestion.
type LineParser interface {
	// Parse scans text for a line-item table and tokenizes its rows. It never
	// fails: malformed rows are dropped, and a text without a recognizable
	// table yields a result with zero items.
	Parse(text string) InvoiceParseResult
}

// columnarLineParser handles the standard columnar layout: a header line
// starting with "Item Code … Qty", one physical line per item (descriptions may
// wrap onto continuation lines), and a "Group Summary" footer closing the table.
type columnarLineParser struct{}

// NewColumnarLineParser returns the parser for the columnar invoice layout.
func NewColumnarLineParser() LineParser {
	return columnarLineParser{}
}

var (
	tableStartRe = regexp.MustCompile(`(?i)^Item Code\s+Qty`)
	tableEndRe   = regexp.MustCompile(`(?i)^Group Summary`)
	rowStartRe   = regexp.MustCompile(`^\d{5,}`)
	packSizeRe   = regexp.MustCompile(`(?i)x`)

	invoiceNumberRe = regexp.MustCompile(`(?i)Invoice\s+(\d{4,})`)
	invoiceDateRe   = regexp.MustCompile(`(?i)Invoice Date\s+([0-9/]+)`)
	purchaseOrderRe = regexp.MustCompile(`(?i)Purchase Order\s+([A-Z0-9-]+)`)
)

func (columnarLineParser) Parse(text string) InvoiceParseResult {
	text = strings.ReplaceAll(text, "\r", "")
	return InvoiceParseResult{
		RawText:       text,
		InvoiceNumber: matchSingle(text, invoiceNumberRe),
		InvoiceDate:   matchSingle(text, invoiceDateRe),
		PurchaseOrder: matchSingle(text, purchaseOrderRe),
		Items:         extractLineItems(text),
	}
}

func matchSingle(source string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractLineItems(text string) []RawInvoiceLine {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	start, end := -1, -1
	for i, line := range lines {
		if start == -1 && tableStartRe.MatchString(line) {
			start = i
		}
		if end == -1 && tableEndRe.MatchString(line) {
			end = i
		}
	}
	if start == -1 || end == -1 || end <= start {
		return nil
	}

	// Rebuild logical rows: a line starting with five or more digits opens a
	// new row, anything else is wrapped description text belonging to the
	// current one. Text before the first row start is discarded.
	var rows []string
	var current []string
	for _, line := range lines[start+1 : end] {
		if rowStartRe.MatchString(line) {
			if len(current) > 0 {
				rows = append(rows, strings.Join(current, " "))
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		rows = append(rows, strings.Join(current, " "))
	}

	var items []RawInvoiceLine
	for _, row := range rows {
		if item := parseRow(row); item != nil {
			items = append(items, *item)
		}
	}
	return items
}

// parseRow tokenizes one logical row. Costs and department come off the right
// end, identity and quantities off the left; whatever sits in the middle is
// pack size, brand, and description. Returns nil for rows that do not fit.
func parseRow(row string) *RawInvoiceLine {
	tokens := strings.Fields(row)
	if len(tokens) < 10 {
		return nil
	}

	extendedCost := parseCurrency(tokens[len(tokens)-1])
	unitCost := parseCurrency(tokens[len(tokens)-2])
	deptCode := tokens[len(tokens)-3]
	tokens = tokens[:len(tokens)-3]

	sku := tokens[0]
	qtyOrdered, okOrdered := parseQuantity(tokens[1])
	qtyShipped, okShipped := parseQuantity(tokens[2])
	invoiceUnit := tokens[3]
	tokens = tokens[4:]

	if sku == "" || invoiceUnit == "" || !okOrdered || !okShipped {
		return nil
	}

	var packSize string
	if len(tokens) >= 2 && packSizeRe.MatchString(tokens[0]) {
		packSize = tokens[0] + " " + tokens[1]
		tokens = tokens[2:]
	}

	var brand string
	if len(tokens) > 0 {
		brand = tokens[0]
		tokens = tokens[1:]
	}

	return &RawInvoiceLine{
		SKU:          sku,
		QtyOrdered:   qtyOrdered,
		QtyShipped:   qtyShipped,
		InvoiceUnit:  invoiceUnit,
		PackSize:     packSize,
		Brand:        brand,
		Description:  strings.TrimSpace(strings.Join(tokens, " ")),
		DeptCode:     deptCode,
		UnitCost:     unitCost,
		ExtendedCost: extendedCost,
	}
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// parseCurrency strips everything but digits, dots, and minus signs before
// parsing. Values that still do not parse are treated as absent, not zero.
func parseCurrency(token string) *decimal.Decimal {
	cleaned := nonNumericRe.ReplaceAllString(token, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// parseQuantity strips like parseCurrency but a token with no digits at all
// counts as zero rather than failing, so a blank cell does not discard a row
// whose other quantity is usable. Only a leftover malformed number fails.
func parseQuantity(token string) (decimal.Decimal, bool) {
	cleaned := nonNumericRe.ReplaceAllString(token, "")
	if cleaned == "" {
		return decimal.Decimal{}, true
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
