package app

import (
	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

// ApplyInvoiceRequest carries everything needed to commit reviewed invoice lines.
type ApplyInvoiceRequest struct {
	RestaurantID  int
	Actor         string
	InvoiceNumber string
	PurchaseOrder string
	Items         []core.ApplyLine
}

// InvoiceRef returns the reference recorded on movement rows: the invoice
// number when present, else the purchase order, else empty.
func (r ApplyInvoiceRequest) InvoiceRef() string {
	if r.InvoiceNumber != "" {
		return r.InvoiceNumber
	}
	return r.PurchaseOrder
}

// CreateUnitRequest carries a new unit's fields.
type CreateUnitRequest struct {
	RestaurantID int
	Code         string
	Name         string
	Precision    int
}

// UpdateUnitRequest carries a partial unit update; nil fields stay unchanged.
type UpdateUnitRequest struct {
	RestaurantID int
	UnitID       int
	Code         *string
	Name         *string
	Precision    *int
}

// CreateIngredientRequest carries a new ingredient's fields.
type CreateIngredientRequest struct {
	RestaurantID int
	SKU          string
	Name         string
	Category     core.Category
	BaseUnitID   int
	ParLevel     decimal.Decimal
}

// UpdateIngredientRequest carries a partial ingredient update; nil fields stay unchanged.
type UpdateIngredientRequest struct {
	RestaurantID int
	IngredientID int
	Name         *string
	Category     *core.Category
	BaseUnitID   *int
	ParLevel     *decimal.Decimal
	Active       *bool
}
