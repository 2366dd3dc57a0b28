package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyLine is a normalized line plus the reviewer's selection flag. A nil
// Apply counts as selected; only an explicit false deselects the line.
type ApplyLine struct {
	NormalizedLine
	Apply *bool `json:"apply,omitempty"`
}

// Selected reports whether the reviewer kept this line.
func (l ApplyLine) Selected() bool {
	return l.Apply == nil || *l.Apply
}

// InvoicePreview is the reviewable result of parsing an invoice without
// touching any state.
type InvoicePreview struct {
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	InvoiceDate   string        `json:"invoice_date,omitempty"`
	PurchaseOrder string        `json:"purchase_order,omitempty"`
	Items         []PreviewLine `json:"items"`
}

// IngestionService runs the two-phase invoice workflow: a side-effect-free
// preview, then a commit of the reviewer-approved subset.
type IngestionService interface {
	// Preview parses and normalizes invoice text and annotates each line
	// against the existing ingredient catalog. Read-only. Fails with
	// ErrNoLineItems when the text yields zero usable lines.
	Preview(ctx context.Context, restaurantID int, text string) (*InvoicePreview, error)

	// Apply commits the selected lines sequentially: resolve-or-create the
	// unit, resolve-or-create the ingredient, increment stock, append a
	// purchase movement. Each line commits independently: a failing line
	// halts the batch but leaves earlier lines committed, and the returned
	// outcomes cover exactly the committed lines. Retrying a failed apply can
	// therefore double-count; callers own that decision.
	Apply(ctx context.Context, restaurantID int, actor, invoiceRef string, lines []ApplyLine) ([]IngestionOutcome, error)
}

type ingestionService struct {
	pool        *pgxpool.Pool
	parser      LineParser
	normalizer  *Normalizer
	units       UnitService
	ingredients IngredientService
	catalog     UnitCatalog
}

func NewIngestionService(
	pool *pgxpool.Pool,
	parser LineParser,
	normalizer *Normalizer,
	units UnitService,
	ingredients IngredientService,
	catalog UnitCatalog,
) IngestionService {
	return &ingestionService{
		pool:        pool,
		parser:      parser,
		normalizer:  normalizer,
		units:       units,
		ingredients: ingredients,
		catalog:     catalog,
	}
}

func (s *ingestionService) Preview(ctx context.Context, restaurantID int, text string) (*InvoicePreview, error) {
	parsed := s.parser.Parse(text)
	normalized := s.normalizer.NormalizeAll(parsed.Items)
	if len(normalized) == 0 {
		return nil, ErrNoLineItems
	}

	var skus []string
	seen := make(map[string]bool, len(normalized))
	for _, line := range normalized {
		if !seen[line.SKU] {
			seen[line.SKU] = true
			skus = append(skus, line.SKU)
		}
	}

	existing, err := s.ingredients.FindBySKUs(ctx, restaurantID, skus)
	if err != nil {
		return nil, err
	}

	items := make([]PreviewLine, 0, len(normalized))
	for _, line := range normalized {
		preview := PreviewLine{NormalizedLine: line}
		if id, ok := existing[line.SKU]; ok {
			preview.Exists = true
			preview.IngredientID = &id
		}
		items = append(items, preview)
	}

	return &InvoicePreview{
		InvoiceNumber: parsed.InvoiceNumber,
		InvoiceDate:   parsed.InvoiceDate,
		PurchaseOrder: parsed.PurchaseOrder,
		Items:         items,
	}, nil
}

func (s *ingestionService) Apply(ctx context.Context, restaurantID int, actor, invoiceRef string, lines []ApplyLine) ([]IngestionOutcome, error) {
	var toApply []NormalizedLine
	for _, line := range lines {
		if !line.Selected() || !line.Quantity.IsPositive() {
			continue
		}
		normalized := line.NormalizedLine
		normalized.SKU = strings.TrimSpace(normalized.SKU)
		normalized.Name = strings.TrimSpace(normalized.Name)
		normalized.UnitCode = strings.ToUpper(strings.TrimSpace(normalized.UnitCode))
		toApply = append(toApply, normalized)
	}
	if len(toApply) == 0 {
		return nil, ErrNothingToApply
	}

	reason := "Invoice import by " + actor
	if invoiceRef != "" {
		reason = "Invoice " + invoiceRef
	}

	// Per-call unit cache: repeated codes within one invoice resolve once.
	unitCache := make(map[string]int)

	var outcomes []IngestionOutcome
	for _, line := range toApply {
		unitID, ok := unitCache[line.UnitCode]
		if !ok {
			unit, err := s.units.ResolveOrCreate(ctx, restaurantID, line.UnitCode, s.catalog)
			if err != nil {
				return outcomes, fmt.Errorf("line %s: %w", line.SKU, err)
			}
			unitID = unit.ID
			unitCache[line.UnitCode] = unitID
		}

		outcome, err := s.applyLine(ctx, restaurantID, line, unitID, reason)
		if err != nil {
			return outcomes, fmt.Errorf("line %s: %w", line.SKU, err)
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes, nil
}

// applyLine commits one invoice line in its own transaction. The ingredient
// upsert races safely against concurrent imports of the same SKU; the stock
// increment and its movement row land atomically.
func (s *ingestionService) applyLine(ctx context.Context, restaurantID int, line NormalizedLine, unitID int, reason string) (*IngestionOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ingredientID int
	created := true
	err = tx.QueryRow(ctx, `
		INSERT INTO ingredients (restaurant_id, sku, name, category, base_unit_id, par_level, current_qty)
		VALUES ($1, $2, $3, $4, $5, 0, 0)
		ON CONFLICT (restaurant_id, sku) DO NOTHING
		RETURNING id
	`, restaurantID, line.SKU, line.Name, line.Category, unitID).Scan(&ingredientID)
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
		err = tx.QueryRow(ctx, `
			SELECT id FROM ingredients
			WHERE restaurant_id = $1 AND sku = $2
		`, restaurantID, line.SKU).Scan(&ingredientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ingredient: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE ingredients
		SET current_qty = current_qty + $2, updated_at = NOW()
		WHERE id = $1
	`, ingredientID, line.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO movements (restaurant_id, ingredient_id, movement_type, delta, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, restaurantID, ingredientID, MovementPurchase, line.Quantity, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit line: %w", err)
	}

	return &IngestionOutcome{
		SKU:           line.SKU,
		Name:          line.Name,
		IngredientID:  ingredientID,
		Created:       created,
		QuantityAdded: line.Quantity,
		UnitCode:      line.UnitCode,
		Category:      line.Category,
		Brand:         line.Brand,
		PackSize:      line.PackSize,
		UnitCost:      line.UnitCost,
		ExtendedCost:  line.ExtendedCost,
	}, nil
}
