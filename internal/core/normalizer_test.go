package core_test

import (
	"strings"
	"testing"

	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

func rawLine(sku string, ordered, shipped int64) core.RawInvoiceLine {
	return core.RawInvoiceLine{
		SKU:         sku,
		QtyOrdered:  decimal.NewFromInt(ordered),
		QtyShipped:  decimal.NewFromInt(shipped),
		InvoiceUnit: "CS",
		Description: "Crushed Tomatoes",
		DeptCode:    "GR",
	}
}

func TestNormalize_QuantitySelection(t *testing.T) {
	n := core.NewNormalizer(core.DefaultDeptCategories())

	tests := []struct {
		name    string
		ordered int64
		shipped int64
		want    int64
		dropped bool
	}{
		{"shipped wins", 5, 3, 3, false},
		{"fallback to ordered", 12, 0, 12, false},
		{"negative shipped falls back", 4, -2, 4, false},
		{"both zero dropped", 0, 0, 0, true},
		{"both negative dropped", -1, -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := n.Normalize(rawLine("10023", tt.ordered, tt.shipped))
			if tt.dropped {
				if line != nil {
					t.Fatalf("expected line to be dropped, got %+v", line)
				}
				return
			}
			if line == nil {
				t.Fatal("expected a normalized line, got nil")
			}
			if !line.Quantity.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("quantity: expected %d, got %s", tt.want, line.Quantity)
			}
		})
	}
}

func TestNormalize_Name(t *testing.T) {
	n := core.NewNormalizer(core.DefaultDeptCategories())

	t.Run("title cases description", func(t *testing.T) {
		raw := rawLine("10023", 5, 5)
		raw.Description = "CRUSHED TOMATOES PREMIUM"
		line := n.Normalize(raw)
		if line.Name != "Crushed Tomatoes Premium" {
			t.Errorf("expected title case, got %q", line.Name)
		}
	})

	t.Run("falls back to brand then sku", func(t *testing.T) {
		raw := rawLine("10023", 5, 5)
		raw.Description = ""
		raw.Brand = "ACME"
		if line := n.Normalize(raw); line.Name != "Acme" {
			t.Errorf("expected brand fallback, got %q", line.Name)
		}

		raw.Brand = ""
		if line := n.Normalize(raw); line.Name != "10023" {
			t.Errorf("expected sku fallback, got %q", line.Name)
		}
	})

	t.Run("placeholder when nothing usable", func(t *testing.T) {
		raw := rawLine("10023", 5, 5)
		raw.Description = "   "
		if line := n.Normalize(raw); line.Name != "Item 10023" {
			t.Errorf("expected placeholder name, got %q", line.Name)
		}
	})

	t.Run("truncates long names", func(t *testing.T) {
		raw := rawLine("10023", 5, 5)
		raw.Description = strings.Repeat("tomato ", 40)
		line := n.Normalize(raw)
		if got := len([]rune(line.Name)); got != 200 {
			t.Errorf("expected name truncated to 200 runes, got %d", got)
		}
	})
}

func TestNormalize_Category(t *testing.T) {
	n := core.NewNormalizer(core.DefaultDeptCategories())

	tests := []struct {
		dept string
		want core.Category
	}{
		{"SF", core.CategorySeafood},
		{"PR", core.CategoryProduce},
		{"MT", core.CategoryMeat},
		{"GR", core.CategoryDry},
		{"DA", core.CategoryDairy},
		{"BR", core.CategoryBar},
		{"mt", core.CategoryMeat},
		{"ZZ", core.CategoryDry},
		{"", core.CategoryDry},
	}

	for _, tt := range tests {
		raw := rawLine("10023", 5, 5)
		raw.DeptCode = tt.dept
		line := n.Normalize(raw)
		if line.Category != tt.want {
			t.Errorf("dept %q: expected %s, got %s", tt.dept, tt.want, line.Category)
		}
		if line.SourceDept != tt.dept {
			t.Errorf("dept %q: source dept not preserved: %q", tt.dept, line.SourceDept)
		}
	}
}

func TestNormalize_UnitCode(t *testing.T) {
	n := core.NewNormalizer(core.DefaultDeptCategories())

	raw := rawLine("10023", 5, 5)
	raw.InvoiceUnit = "cs"
	if line := n.Normalize(raw); line.UnitCode != "CS" {
		t.Errorf("expected uppercased unit code, got %q", line.UnitCode)
	}

	raw.InvoiceUnit = ""
	if line := n.Normalize(raw); line.UnitCode != "EA" {
		t.Errorf("expected EA default, got %q", line.UnitCode)
	}
}

func TestNormalizeAll_DropsUnusableLines(t *testing.T) {
	n := core.NewNormalizer(core.DefaultDeptCategories())

	lines := n.NormalizeAll([]core.RawInvoiceLine{
		rawLine("10023", 5, 5),
		rawLine("20077", 0, 0),
		rawLine("30031", 2, 0),
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 usable lines, got %d", len(lines))
	}
	if lines[0].SKU != "10023" || lines[1].SKU != "30031" {
		t.Errorf("unexpected survivors: %s, %s", lines[0].SKU, lines[1].SKU)
	}
}

func TestUnitCatalog_Meta(t *testing.T) {
	catalog := core.DefaultUnitCatalog()

	tests := []struct {
		code      string
		name      string
		precision int
	}{
		{"EA", "Each", 0},
		{"CS", "Case", 0},
		{"LB", "Pounds", 2},
		{"KG", "Kilograms", 3},
		{"KGA", "Kilograms (Approx)", 3},
		{"L", "Liters", 3},
		{"XX", "XX Unit", 2},
	}

	for _, tt := range tests {
		meta := catalog.Meta(tt.code)
		if meta.Name != tt.name || meta.Precision != tt.precision {
			t.Errorf("%s: expected %s/%d, got %s/%d", tt.code, tt.name, tt.precision, meta.Name, meta.Precision)
		}
	}
}
