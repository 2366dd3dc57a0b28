package app

import (
	"context"

	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// HTTP types and no display logic.
type ApplicationService interface {
	// GetRestaurant loads a tenant by id.
	GetRestaurant(ctx context.Context, restaurantID int) (*core.Restaurant, error)

	// PreviewInvoice extracts text from an uploaded invoice file, parses and
	// normalizes its line items, and annotates them against the restaurant's
	// catalog. Read-only and always safe to retry.
	PreviewInvoice(ctx context.Context, restaurantID int, file []byte) (*core.InvoicePreview, error)

	// ApplyInvoice commits the reviewer-approved lines. Not idempotent:
	// retrying after a partial failure re-adds the lines that already
	// committed. The result's Items cover exactly the committed lines even
	// when an error is returned alongside.
	ApplyInvoice(ctx context.Context, req ApplyInvoiceRequest) (*ApplyInvoiceResult, error)

	// Units.
	ListUnits(ctx context.Context, restaurantID int) ([]core.Unit, error)
	CreateUnit(ctx context.Context, req CreateUnitRequest) (*core.Unit, error)
	GetUnit(ctx context.Context, restaurantID, unitID int) (*core.Unit, error)
	UpdateUnit(ctx context.Context, req UpdateUnitRequest) (*core.Unit, error)
	DeleteUnit(ctx context.Context, restaurantID, unitID int) error

	// Ingredients.
	ListIngredients(ctx context.Context, restaurantID int, active *bool) ([]core.Ingredient, error)
	CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*core.Ingredient, error)
	GetIngredient(ctx context.Context, restaurantID, ingredientID int) (*core.Ingredient, error)
	UpdateIngredient(ctx context.Context, req UpdateIngredientRequest) (*core.Ingredient, error)
	ArchiveIngredient(ctx context.Context, restaurantID, ingredientID int) (*core.Ingredient, error)

	// AdjustIngredient records a manual stock correction with its audit row.
	AdjustIngredient(ctx context.Context, restaurantID, ingredientID int, delta decimal.Decimal, reason string) (*core.Ingredient, error)

	// ListIngredientMovements returns one ingredient's audit trail, newest first.
	ListIngredientMovements(ctx context.Context, restaurantID, ingredientID int) ([]core.Movement, error)

	// ExportMovements renders the restaurant's movement audit trail as an
	// XLSX workbook.
	ExportMovements(ctx context.Context, restaurantID int) ([]byte, error)
}
