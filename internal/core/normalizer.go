package core

import (
	"strings"
	"unicode"
)

// DeptCategories maps vendor department codes (uppercase) to ingredient
// categories. It is passed in as configuration so tenants and newer invoice
// formats can extend it without code changes.
type DeptCategories map[string]Category

// DefaultDeptCategories returns the department mapping for the standard
// vendor layout. Unmapped departments fall back to dry goods.
func DefaultDeptCategories() DeptCategories {
	return DeptCategories{
		"SF": CategorySeafood,
		"PR": CategoryProduce,
		"MT": CategoryMeat,
		"GR": CategoryDry,
		"DA": CategoryDairy,
		"BR": CategoryBar,
	}
}

// UnitMeta is the display metadata used when a unit is created on demand
// during ingestion.
type UnitMeta struct {
	Name      string
	Precision int
}

// UnitCatalog maps unit codes (uppercase) to their metadata. Like
// DeptCategories, it is explicit configuration rather than a hidden constant.
type UnitCatalog map[string]UnitMeta

// DefaultUnitCatalog returns the metadata for the unit codes the standard
// vendor layout uses.
func DefaultUnitCatalog() UnitCatalog {
	return UnitCatalog{
		"EA":  {Name: "Each", Precision: 0},
		"CS":  {Name: "Case", Precision: 0},
		"LB":  {Name: "Pounds", Precision: 2},
		"KG":  {Name: "Kilograms", Precision: 3},
		"KGA": {Name: "Kilograms (Approx)", Precision: 3},
		"G":   {Name: "Grams", Precision: 0},
		"ML":  {Name: "Milliliters", Precision: 0},
		"L":   {Name: "Liters", Precision: 3},
	}
}

// Meta resolves a unit code, falling back to a generic "<code> Unit" with
// precision 2 for codes the catalog does not know.
func (c UnitCatalog) Meta(code string) UnitMeta {
	if meta, ok := c[code]; ok {
		return meta
	}
	return UnitMeta{Name: code + " Unit", Precision: 2}
}

const maxNameLength = 200

// Normalizer reconciles raw invoice lines with the tenant's vocabulary.
type Normalizer struct {
	depts DeptCategories
}

// NewNormalizer builds a Normalizer over the given department mapping.
func NewNormalizer(depts DeptCategories) *Normalizer {
	return &Normalizer{depts: depts}
}

// Normalize maps one parsed line to its normalized form, or nil when the line
// carries no usable quantity. The shipped quantity wins when positive; the
// ordered quantity is the fallback.
func (n *Normalizer) Normalize(raw RawInvoiceLine) *NormalizedLine {
	quantity := raw.QtyShipped
	if !quantity.IsPositive() {
		quantity = raw.QtyOrdered
	}
	if !quantity.IsPositive() {
		return nil
	}

	sku := strings.TrimSpace(raw.SKU)

	source := raw.Description
	if source == "" {
		source = raw.Brand
	}
	if source == "" {
		source = raw.SKU
	}
	name := truncate(titleCase(source), maxNameLength)
	if name == "" {
		name = "Item " + sku
	}

	unitCode := strings.ToUpper(raw.InvoiceUnit)
	if unitCode == "" {
		unitCode = "EA"
	}

	return &NormalizedLine{
		SKU:          sku,
		Name:         name,
		Quantity:     quantity,
		UnitCode:     unitCode,
		Category:     n.category(raw.DeptCode),
		SourceDept:   raw.DeptCode,
		Brand:        raw.Brand,
		PackSize:     raw.PackSize,
		UnitCost:     raw.UnitCost,
		ExtendedCost: raw.ExtendedCost,
	}
}

// NormalizeAll runs Normalize over a batch, dropping the unusable lines.
func (n *Normalizer) NormalizeAll(raws []RawInvoiceLine) []NormalizedLine {
	var out []NormalizedLine
	for _, raw := range raws {
		if line := n.Normalize(raw); line != nil {
			out = append(out, *line)
		}
	}
	return out
}

func (n *Normalizer) category(deptCode string) Category {
	if deptCode == "" {
		return CategoryDry
	}
	if cat, ok := n.depts[strings.ToUpper(deptCode)]; ok {
		return cat
	}
	return CategoryDry
}

// titleCase lowercases the input and uppercases the first letter of every word.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevIsWord := false
	for _, r := range strings.ToLower(s) {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if isWord && !prevIsWord {
			r = unicode.ToUpper(r)
		}
		prevIsWord = isWord
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
