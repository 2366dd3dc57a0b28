package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"restaurant-inventory/internal/core"
	"restaurant-inventory/internal/extract"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type appService struct {
	pool        *pgxpool.Pool
	extractor   extract.TextExtractor
	ingestion   core.IngestionService
	units       core.UnitService
	ingredients core.IngredientService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	extractor extract.TextExtractor,
	ingestion core.IngestionService,
	units core.UnitService,
	ingredients core.IngredientService,
) ApplicationService {
	return &appService{
		pool:        pool,
		extractor:   extractor,
		ingestion:   ingestion,
		units:       units,
		ingredients: ingredients,
	}
}

func (s *appService) GetRestaurant(ctx context.Context, restaurantID int) (*core.Restaurant, error) {
	var r core.Restaurant
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, created_at FROM restaurants WHERE id = $1", restaurantID,
	).Scan(&r.ID, &r.Name, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	return &r, nil
}

func (s *appService) PreviewInvoice(ctx context.Context, restaurantID int, file []byte) (*core.InvoicePreview, error) {
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to extract invoice text: %w", err)
	}

	return s.ingestion.Preview(ctx, restaurantID, text)
}

func (s *appService) ApplyInvoice(ctx context.Context, req ApplyInvoiceRequest) (*ApplyInvoiceResult, error) {
	if _, err := s.GetRestaurant(ctx, req.RestaurantID); err != nil {
		return nil, err
	}

	actor := req.Actor
	if actor == "" {
		actor = "api"
	}

	outcomes, err := s.ingestion.Apply(ctx, req.RestaurantID, actor, req.InvoiceRef(), req.Items)
	// The committed outcomes travel with the error so the caller can report
	// partial application honestly.
	return &ApplyInvoiceResult{Items: outcomes}, err
}

func (s *appService) ListUnits(ctx context.Context, restaurantID int) ([]core.Unit, error) {
	return s.units.List(ctx, restaurantID)
}

func (s *appService) CreateUnit(ctx context.Context, req CreateUnitRequest) (*core.Unit, error) {
	return s.units.Create(ctx, req.RestaurantID, req.Code, req.Name, req.Precision)
}

func (s *appService) GetUnit(ctx context.Context, restaurantID, unitID int) (*core.Unit, error) {
	return s.units.Get(ctx, restaurantID, unitID)
}

func (s *appService) UpdateUnit(ctx context.Context, req UpdateUnitRequest) (*core.Unit, error) {
	return s.units.Update(ctx, req.RestaurantID, req.UnitID, core.UnitPatch{
		Code:      req.Code,
		Name:      req.Name,
		Precision: req.Precision,
	})
}

func (s *appService) DeleteUnit(ctx context.Context, restaurantID, unitID int) error {
	return s.units.Delete(ctx, restaurantID, unitID)
}

func (s *appService) ListIngredients(ctx context.Context, restaurantID int, active *bool) ([]core.Ingredient, error) {
	return s.ingredients.List(ctx, restaurantID, active)
}

func (s *appService) CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*core.Ingredient, error) {
	return s.ingredients.Create(ctx, req.RestaurantID, core.IngredientInput{
		SKU:        req.SKU,
		Name:       req.Name,
		Category:   req.Category,
		BaseUnitID: req.BaseUnitID,
		ParLevel:   req.ParLevel,
	})
}

func (s *appService) GetIngredient(ctx context.Context, restaurantID, ingredientID int) (*core.Ingredient, error) {
	return s.ingredients.Get(ctx, restaurantID, ingredientID)
}

func (s *appService) UpdateIngredient(ctx context.Context, req UpdateIngredientRequest) (*core.Ingredient, error) {
	return s.ingredients.Update(ctx, req.RestaurantID, req.IngredientID, core.IngredientPatch{
		Name:       req.Name,
		Category:   req.Category,
		BaseUnitID: req.BaseUnitID,
		ParLevel:   req.ParLevel,
		Active:     req.Active,
	})
}

func (s *appService) ArchiveIngredient(ctx context.Context, restaurantID, ingredientID int) (*core.Ingredient, error) {
	return s.ingredients.Archive(ctx, restaurantID, ingredientID)
}

func (s *appService) AdjustIngredient(ctx context.Context, restaurantID, ingredientID int, delta decimal.Decimal, reason string) (*core.Ingredient, error) {
	return s.ingredients.Adjust(ctx, restaurantID, ingredientID, delta, reason)
}

func (s *appService) ListIngredientMovements(ctx context.Context, restaurantID, ingredientID int) ([]core.Movement, error) {
	return s.ingredients.Movements(ctx, restaurantID, ingredientID)
}

// ExportMovements renders the audit trail as a single-sheet XLSX workbook.
func (s *appService) ExportMovements(ctx context.Context, restaurantID int) ([]byte, error) {
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	entries, err := s.ingredients.MovementLog(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Movements"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Date", "SKU", "Ingredient", "Type", "Delta", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, e := range entries {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, e.CreatedAt.Format("2006-01-02 15:04:05"))
		write(2, e.SKU)
		write(3, e.IngredientName)
		write(4, string(e.Type))
		write(5, e.Delta.String())
		if e.Reason != nil {
			write(6, *e.Reason)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "C", "C", 32)
	_ = f.SetColWidth(sheet, "F", "F", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
