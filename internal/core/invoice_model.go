package core

import "github.com/shopspring/decimal"

// RawInvoiceLine is one tokenized row of a vendor invoice's line-item table.
// It carries whatever the parser found; no business meaning is validated here.
type RawInvoiceLine struct {
	SKU          string           `json:"sku"`
	QtyOrdered   decimal.Decimal  `json:"qty_ordered"`
	QtyShipped   decimal.Decimal  `json:"qty_shipped"`
	InvoiceUnit  string           `json:"invoice_unit"`
	PackSize     string           `json:"pack_size,omitempty"`
	Brand        string           `json:"brand,omitempty"`
	Description  string           `json:"description"`
	DeptCode     string           `json:"dept_code,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	ExtendedCost *decimal.Decimal `json:"extended_cost,omitempty"`
}

// InvoiceParseResult is the parser's full output for one invoice text.
// Header fields are extracted by pattern search over the whole text and are
// each optional; Items is empty when no line-item table was found.
type InvoiceParseResult struct {
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	InvoiceDate   string           `json:"invoice_date,omitempty"`
	PurchaseOrder string           `json:"purchase_order,omitempty"`
	RawText       string           `json:"-"`
	Items         []RawInvoiceLine `json:"items"`
}

// NormalizedLine is a RawInvoiceLine reconciled with the tenant's vocabulary:
// resolved display name, uppercase unit code, mapped category, and the
// authoritative quantity. Quantity is always positive; lines that cannot
// satisfy that are dropped by the normalizer.
type NormalizedLine struct {
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCode     string           `json:"unit_code"`
	Category     Category         `json:"category"`
	SourceDept   string           `json:"source_dept,omitempty"`
	Brand        string           `json:"brand,omitempty"`
	PackSize     string           `json:"pack_size,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	ExtendedCost *decimal.Decimal `json:"extended_cost,omitempty"`
}

// PreviewLine is a NormalizedLine annotated against the existing ingredient
// catalog for human review. Never persisted.
type PreviewLine struct {
	NormalizedLine
	Exists       bool `json:"exists"`
	IngredientID *int `json:"ingredient_id,omitempty"`
}

// IngestionOutcome is the per-line result of committing an approved invoice line.
type IngestionOutcome struct {
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	IngredientID  int              `json:"ingredient_id"`
	Created       bool             `json:"created"`
	QuantityAdded decimal.Decimal  `json:"quantity_added"`
	UnitCode      string           `json:"unit_code"`
	Category      Category         `json:"category"`
	Brand         string           `json:"brand,omitempty"`
	PackSize      string           `json:"pack_size,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ExtendedCost  *decimal.Decimal `json:"extended_cost,omitempty"`
}
