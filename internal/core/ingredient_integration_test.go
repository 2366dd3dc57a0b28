package core_test

import (
	"context"
	"errors"
	"testing"

	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

func createTestIngredient(t *testing.T, units core.UnitService, ingredients core.IngredientService, sku, name string) *core.Ingredient {
	t.Helper()
	ctx := context.Background()

	unit, err := units.ResolveOrCreate(ctx, 1, "EA", core.DefaultUnitCatalog())
	if err != nil {
		t.Fatalf("Failed to resolve unit: %v", err)
	}
	ing, err := ingredients.Create(ctx, 1, core.IngredientInput{
		SKU: sku, Name: name, Category: core.CategoryDry, BaseUnitID: unit.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create ingredient: %v", err)
	}
	return ing
}

func TestIngredientService_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	units := core.NewUnitService(pool)
	ingredients := core.NewIngredientService(pool)
	ctx := context.Background()

	ing := createTestIngredient(t, units, ingredients, "10023", "Crushed Tomatoes")
	if !ing.Active || !ing.CurrentQty.IsZero() {
		t.Errorf("expected active ingredient with zero stock, got %+v", ing)
	}

	newPar := decimal.RequireFromString("5.5")
	meat := core.CategoryMeat
	updated, err := ingredients.Update(ctx, 1, ing.ID, core.IngredientPatch{
		Category: &meat, ParLevel: &newPar,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Category != core.CategoryMeat || !updated.ParLevel.Equal(newPar) {
		t.Errorf("expected patched category and par level, got %+v", updated)
	}
	if updated.Name != ing.Name {
		t.Errorf("expected unpatched name kept, got %s", updated.Name)
	}

	// Archive is a soft delete: the row survives with active = false.
	archived, err := ingredients.Archive(ctx, 1, ing.ID)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if archived.Active {
		t.Error("expected archived ingredient inactive")
	}
	if _, err := ingredients.Get(ctx, 1, ing.ID); err != nil {
		t.Errorf("expected archived ingredient still fetchable, got %v", err)
	}

	active := true
	list, err := ingredients.List(ctx, 1, &active)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no active ingredients, got %d", len(list))
	}
	all, err := ingredients.List(ctx, 1, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 ingredient in unfiltered list, got %d", len(all))
	}
}

func TestIngredientService_DuplicateSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	units := core.NewUnitService(pool)
	ingredients := core.NewIngredientService(pool)
	ctx := context.Background()

	ing := createTestIngredient(t, units, ingredients, "10023", "Crushed Tomatoes")

	_, err := ingredients.Create(ctx, 1, core.IngredientInput{
		SKU: "10023", Name: "Different Name", Category: core.CategoryDry, BaseUnitID: ing.BaseUnitID,
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestIngredientService_Adjust(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	units := core.NewUnitService(pool)
	ingredients := core.NewIngredientService(pool)
	ctx := context.Background()

	ing := createTestIngredient(t, units, ingredients, "10023", "Crushed Tomatoes")

	up, err := ingredients.Adjust(ctx, 1, ing.ID, decimal.NewFromInt(8), "weekly count")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if !up.CurrentQty.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected qty 8, got %s", up.CurrentQty)
	}

	down, err := ingredients.Adjust(ctx, 1, ing.ID, decimal.NewFromInt(-3), "")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if !down.CurrentQty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected qty 5, got %s", down.CurrentQty)
	}

	// Stock can reach exactly zero but never go below it.
	if _, err := ingredients.Adjust(ctx, 1, ing.ID, decimal.NewFromInt(-6), ""); !errors.Is(err, core.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := ingredients.Adjust(ctx, 1, ing.ID, decimal.NewFromInt(-5), ""); err != nil {
		t.Errorf("expected drain to zero to succeed, got %v", err)
	}

	// A rejected adjustment writes nothing.
	movements, err := ingredients.Movements(ctx, 1, ing.ID)
	if err != nil {
		t.Fatalf("Movements failed: %v", err)
	}
	if len(movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(movements))
	}
	for _, m := range movements {
		if m.Type != core.MovementAdjustment {
			t.Errorf("expected adjustment movement, got %s", m.Type)
		}
	}
	// Newest first.
	if !movements[0].Delta.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("expected newest movement -5, got %s", movements[0].Delta)
	}
	// Blank reason is stored as NULL, not empty string.
	if movements[0].Reason != nil {
		t.Errorf("expected nil reason, got %q", *movements[0].Reason)
	}
	if movements[2].Reason == nil || *movements[2].Reason != "weekly count" {
		t.Errorf("expected oldest reason %q, got %v", "weekly count", movements[2].Reason)
	}

	if _, err := ingredients.Adjust(ctx, 1, ing.ID, decimal.Zero, ""); err == nil {
		t.Error("expected zero delta to be rejected")
	}
}

func TestIngredientService_FindBySKUs(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	units := core.NewUnitService(pool)
	ingredients := core.NewIngredientService(pool)
	ctx := context.Background()

	a := createTestIngredient(t, units, ingredients, "10023", "Crushed Tomatoes")
	b := createTestIngredient(t, units, ingredients, "20077", "Chicken Breast")

	found, err := ingredients.FindBySKUs(ctx, 1, []string{"10023", "20077", "99999"})
	if err != nil {
		t.Fatalf("FindBySKUs failed: %v", err)
	}
	if len(found) != 2 || found["10023"] != a.ID || found["20077"] != b.ID {
		t.Errorf("unexpected sku map: %v", found)
	}

	// Other tenants never leak in.
	found, err = ingredients.FindBySKUs(ctx, 2, []string{"10023"})
	if err != nil {
		t.Fatalf("FindBySKUs failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("expected empty map for other restaurant, got %v", found)
	}

	found, err = ingredients.FindBySKUs(ctx, 1, nil)
	if err != nil {
		t.Fatalf("FindBySKUs failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("expected empty map for empty input, got %v", found)
	}
}

func TestIngredientService_MovementLog(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	units := core.NewUnitService(pool)
	ingredients := core.NewIngredientService(pool)
	ctx := context.Background()

	a := createTestIngredient(t, units, ingredients, "10023", "Crushed Tomatoes")
	b := createTestIngredient(t, units, ingredients, "20077", "Chicken Breast")

	if _, err := ingredients.Adjust(ctx, 1, a.ID, decimal.NewFromInt(4), "count"); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if _, err := ingredients.Adjust(ctx, 1, b.ID, decimal.NewFromInt(2), "count"); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	log, err := ingredients.MovementLog(ctx, 1)
	if err != nil {
		t.Fatalf("MovementLog failed: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(log))
	}
	// Newest first, joined with ingredient identity.
	if log[0].SKU != "20077" || log[0].IngredientName != "Chicken Breast" {
		t.Errorf("unexpected newest entry: %+v", log[0])
	}
	if log[1].SKU != "10023" {
		t.Errorf("unexpected oldest entry: %+v", log[1])
	}
}
