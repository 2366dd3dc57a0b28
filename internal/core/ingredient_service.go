package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// IngredientInput carries the fields for creating an ingredient through the
// CRUD surface (ingestion creates its own rows separately).
type IngredientInput struct {
	SKU        string
	Name       string
	Category   Category
	BaseUnitID int
	ParLevel   decimal.Decimal
}

// IngredientPatch carries the fields of a partial update; nil means unchanged.
type IngredientPatch struct {
	Name       *string
	Category   *Category
	BaseUnitID *int
	ParLevel   *decimal.Decimal
	Active     *bool
}

// MovementLogEntry is one row of the joined movement audit export.
type MovementLogEntry struct {
	Movement
	SKU            string `json:"sku"`
	IngredientName string `json:"ingredient_name"`
}

// IngredientService manages the ingredient catalog and its movement history.
type IngredientService interface {
	// List returns ingredients ordered by name. active filters by the archive
	// flag when non-nil.
	List(ctx context.Context, restaurantID int, active *bool) ([]Ingredient, error)
	Create(ctx context.Context, restaurantID int, input IngredientInput) (*Ingredient, error)
	Get(ctx context.Context, restaurantID, ingredientID int) (*Ingredient, error)
	Update(ctx context.Context, restaurantID, ingredientID int, patch IngredientPatch) (*Ingredient, error)
	// Archive soft-deletes: the row stays for movement history, active goes false.
	Archive(ctx context.Context, restaurantID, ingredientID int) (*Ingredient, error)
	// FindBySKUs returns sku → ingredient id for every listed SKU the
	// restaurant already has. Read-only; used by invoice preview.
	FindBySKUs(ctx context.Context, restaurantID int, skus []string) (map[string]int, error)
	// Adjust applies a manual stock correction: updates current_qty and
	// appends the matching adjustment movement in one transaction. Fails with
	// ErrInsufficientStock when the result would be negative.
	Adjust(ctx context.Context, restaurantID, ingredientID int, delta decimal.Decimal, reason string) (*Ingredient, error)
	// Movements returns one ingredient's audit trail, newest first.
	Movements(ctx context.Context, restaurantID, ingredientID int) ([]Movement, error)
	// MovementLog returns the restaurant's full audit trail joined with
	// ingredient identity, newest first.
	MovementLog(ctx context.Context, restaurantID int) ([]MovementLogEntry, error)
}

type ingredientService struct {
	pool *pgxpool.Pool
}

func NewIngredientService(pool *pgxpool.Pool) IngredientService {
	return &ingredientService{pool: pool}
}

const ingredientColumns = "id, restaurant_id, sku, name, category, base_unit_id, par_level, current_qty, active, created_at, updated_at"

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	var ing Ingredient
	err := row.Scan(&ing.ID, &ing.RestaurantID, &ing.SKU, &ing.Name, &ing.Category,
		&ing.BaseUnitID, &ing.ParLevel, &ing.CurrentQty, &ing.Active, &ing.CreatedAt, &ing.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *ingredientService) List(ctx context.Context, restaurantID int, active *bool) ([]Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		WHERE restaurant_id = $1
	`
	args := []any{restaurantID}
	if active != nil {
		query += " AND active = $2"
		args = append(args, *active)
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.RestaurantID, &ing.SKU, &ing.Name, &ing.Category,
			&ing.BaseUnitID, &ing.ParLevel, &ing.CurrentQty, &ing.Active, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (s *ingredientService) Create(ctx context.Context, restaurantID int, input IngredientInput) (*Ingredient, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("ingredient sku and name are required")
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("unknown ingredient category %q", input.Category)
	}
	if input.ParLevel.IsNegative() {
		return nil, fmt.Errorf("par level cannot be negative, got %s", input.ParLevel)
	}

	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		INSERT INTO ingredients (restaurant_id, sku, name, category, base_unit_id, par_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ingredientColumns+`
	`, restaurantID, sku, name, input.Category, input.BaseUnitID, input.ParLevel))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("ingredient %s: %w", sku, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) Get(ctx context.Context, restaurantID, ingredientID int) (*Ingredient, error) {
	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE restaurant_id = $1 AND id = $2
	`, restaurantID, ingredientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ingredient: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) Update(ctx context.Context, restaurantID, ingredientID int, patch IngredientPatch) (*Ingredient, error) {
	current, err := s.Get(ctx, restaurantID, ingredientID)
	if err != nil {
		return nil, err
	}

	name, category, baseUnitID := current.Name, current.Category, current.BaseUnitID
	parLevel, active := current.ParLevel, current.Active
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		category = *patch.Category
	}
	if patch.BaseUnitID != nil {
		baseUnitID = *patch.BaseUnitID
	}
	if patch.ParLevel != nil {
		parLevel = *patch.ParLevel
	}
	if patch.Active != nil {
		active = *patch.Active
	}
	if name == "" {
		return nil, fmt.Errorf("ingredient name cannot be blank")
	}
	if !category.Valid() {
		return nil, fmt.Errorf("unknown ingredient category %q", category)
	}
	if parLevel.IsNegative() {
		return nil, fmt.Errorf("par level cannot be negative, got %s", parLevel)
	}

	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		UPDATE ingredients
		SET name = $3, category = $4, base_unit_id = $5, par_level = $6, active = $7, updated_at = NOW()
		WHERE restaurant_id = $1 AND id = $2
		RETURNING `+ingredientColumns+`
	`, restaurantID, ingredientID, name, category, baseUnitID, parLevel, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) Archive(ctx context.Context, restaurantID, ingredientID int) (*Ingredient, error) {
	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		UPDATE ingredients
		SET active = FALSE, updated_at = NOW()
		WHERE restaurant_id = $1 AND id = $2
		RETURNING `+ingredientColumns+`
	`, restaurantID, ingredientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive ingredient: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) FindBySKUs(ctx context.Context, restaurantID int, skus []string) (map[string]int, error) {
	existing := make(map[string]int, len(skus))
	if len(skus) == 0 {
		return existing, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sku, id FROM ingredients
		WHERE restaurant_id = $1 AND sku = ANY($2)
	`, restaurantID, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients by sku: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku string
		var id int
		if err := rows.Scan(&sku, &id); err != nil {
			return nil, fmt.Errorf("failed to scan sku row: %w", err)
		}
		existing[sku] = id
	}
	return existing, rows.Err()
}

func (s *ingredientService) Adjust(ctx context.Context, restaurantID, ingredientID int, delta decimal.Decimal, reason string) (*Ingredient, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("adjustment delta cannot be zero")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentQty decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT current_qty FROM ingredients
		WHERE restaurant_id = $1 AND id = $2
		FOR UPDATE
	`, restaurantID, ingredientID).Scan(&currentQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock ingredient: %w", err)
	}

	newQty := currentQty.Add(delta)
	if newQty.IsNegative() {
		return nil, fmt.Errorf("%w: on hand %s, adjustment %s", ErrInsufficientStock, currentQty, delta)
	}

	ing, err := scanIngredient(tx.QueryRow(ctx, `
		UPDATE ingredients
		SET current_qty = $3, updated_at = NOW()
		WHERE restaurant_id = $1 AND id = $2
		RETURNING `+ingredientColumns+`
	`, restaurantID, ingredientID, newQty))
	if err != nil {
		return nil, fmt.Errorf("failed to update ingredient quantity: %w", err)
	}

	var reasonArg *string
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		reasonArg = &trimmed
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO movements (restaurant_id, ingredient_id, movement_type, delta, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, restaurantID, ingredientID, MovementAdjustment, delta, reasonArg)
	if err != nil {
		return nil, fmt.Errorf("failed to insert adjustment movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) Movements(ctx context.Context, restaurantID, ingredientID int) ([]Movement, error) {
	if _, err := s.Get(ctx, restaurantID, ingredientID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, restaurant_id, ingredient_id, movement_type, delta, reason, created_at
		FROM movements
		WHERE restaurant_id = $1 AND ingredient_id = $2
		ORDER BY created_at DESC, id DESC
	`, restaurantID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.IngredientID, &m.Type, &m.Delta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *ingredientService) MovementLog(ctx context.Context, restaurantID int) ([]MovementLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.restaurant_id, m.ingredient_id, m.movement_type, m.delta, m.reason, m.created_at,
		       i.sku, i.name
		FROM movements m
		JOIN ingredients i ON i.id = m.ingredient_id
		WHERE m.restaurant_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement log: %w", err)
	}
	defer rows.Close()

	var entries []MovementLogEntry
	for rows.Next() {
		var e MovementLogEntry
		if err := rows.Scan(&e.ID, &e.RestaurantID, &e.IngredientID, &e.Type, &e.Delta, &e.Reason, &e.CreatedAt,
			&e.SKU, &e.IngredientName); err != nil {
			return nil, fmt.Errorf("failed to scan movement log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
