package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an ingredient for reporting and menu costing.
type Category string

const (
	CategoryDry     Category = "dry"
	CategoryProduce Category = "produce"
	CategoryMeat    Category = "meat"
	CategoryDairy   Category = "dairy"
	CategoryBar     Category = "bar"
	CategorySeafood Category = "seafood"
	CategoryGrocery Category = "grocery"
)

// Categories lists every valid ingredient category.
var Categories = []Category{
	CategoryDry, CategoryProduce, CategoryMeat, CategoryDairy,
	CategoryBar, CategorySeafood, CategoryGrocery,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MovementType is the kind of stock change recorded in the audit trail.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementAdjustment MovementType = "adjustment"
	MovementUsage      MovementType = "usage"
)

// Restaurant is the tenant. All units, ingredients, and movements belong to one.
type Restaurant struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is a measurement unit scoped to one restaurant. Code is uppercase and
// unique per restaurant. Precision is the number of decimal places shown in
// the UI (0–6).
type Unit struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Precision    int       `json:"precision"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Ingredient is a stocked item. SKU is unique per restaurant; CurrentQty only
// ever changes together with a Movement row carrying the same delta.
type Ingredient struct {
	ID           int             `json:"id"`
	RestaurantID int             `json:"restaurant_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     Category        `json:"category"`
	BaseUnitID   int             `json:"base_unit_id"`
	ParLevel     decimal.Decimal `json:"par_level"`
	CurrentQty   decimal.Decimal `json:"current_qty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Movement is an immutable audit record of one quantity change.
type Movement struct {
	ID           int             `json:"id"`
	RestaurantID int             `json:"restaurant_id"`
	IngredientID int             `json:"ingredient_id"`
	Type         MovementType    `json:"type"`
	Delta        decimal.Decimal `json:"delta"`
	Reason       *string         `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
