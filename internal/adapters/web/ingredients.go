package web

import (
	"fmt"
	"net/http"
	"time"

	"restaurant-inventory/internal/app"
	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

type createIngredientRequest struct {
	SKU        string          `json:"sku" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Category   core.Category   `json:"category" validate:"required,oneof=dry produce meat dairy bar seafood grocery"`
	BaseUnitID int             `json:"base_unit_id" validate:"required,gt=0"`
	ParLevel   decimal.Decimal `json:"par_level"`
}

type updateIngredientRequest struct {
	Name       *string          `json:"name"`
	Category   *core.Category   `json:"category" validate:"omitempty,oneof=dry produce meat dairy bar seafood grocery"`
	BaseUnitID *int             `json:"base_unit_id" validate:"omitempty,gt=0"`
	ParLevel   *decimal.Decimal `json:"par_level"`
	Active     *bool            `json:"active"`
}

type adjustIngredientRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

// listIngredients handles GET /api/restaurants/{restaurantID}/ingredients.
// Accepts ?active=true|false to filter by the archive flag.
func (h *Handler) listIngredients(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	var active *bool
	switch r.URL.Query().Get("active") {
	case "true":
		v := true
		active = &v
	case "false":
		v := false
		active = &v
	}

	ingredients, err := h.svc.ListIngredients(r.Context(), id, active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ingredients)
}

// createIngredient handles POST /api/restaurants/{restaurantID}/ingredients.
func (h *Handler) createIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	var req createIngredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateStruct(w, r, req) {
		return
	}

	ing, err := h.svc.CreateIngredient(r.Context(), app.CreateIngredientRequest{
		RestaurantID: id,
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		BaseUnitID:   req.BaseUnitID,
		ParLevel:     req.ParLevel,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, ing, http.StatusCreated)
}

// getIngredient handles GET /api/restaurants/{restaurantID}/ingredients/{ingredientID}.
func (h *Handler) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	ingID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	ing, err := h.svc.GetIngredient(r.Context(), id, ingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ing)
}

// updateIngredient handles PATCH /api/restaurants/{restaurantID}/ingredients/{ingredientID}.
func (h *Handler) updateIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	ingID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	var req updateIngredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateStruct(w, r, req) {
		return
	}

	ing, err := h.svc.UpdateIngredient(r.Context(), app.UpdateIngredientRequest{
		RestaurantID: id,
		IngredientID: ingID,
		Name:         req.Name,
		Category:     req.Category,
		BaseUnitID:   req.BaseUnitID,
		ParLevel:     req.ParLevel,
		Active:       req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ing)
}

// archiveIngredient handles DELETE /api/restaurants/{restaurantID}/ingredients/{ingredientID}.
// Soft delete: the row stays for movement history, active goes false.
func (h *Handler) archiveIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	ingID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	ing, err := h.svc.ArchiveIngredient(r.Context(), id, ingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ing)
}

// adjustIngredient handles POST /api/restaurants/{restaurantID}/ingredients/{ingredientID}/adjust.
func (h *Handler) adjustIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	ingID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	var req adjustIngredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta.IsZero() {
		writeError(w, r, "adjustment delta cannot be zero", "VALIDATION_FAILED", http.StatusBadRequest)
		return
	}

	ing, err := h.svc.AdjustIngredient(r.Context(), id, ingID, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ing)
}

// listMovements handles GET /api/restaurants/{restaurantID}/ingredients/{ingredientID}/movements.
func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	ingID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	movements, err := h.svc.ListIngredientMovements(r.Context(), id, ingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, movements)
}

// exportMovements handles GET /api/restaurants/{restaurantID}/movements/export.
// Streams the full movement audit trail as an XLSX workbook.
func (h *Handler) exportMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	data, err := h.svc.ExportMovements(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("movements-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}
