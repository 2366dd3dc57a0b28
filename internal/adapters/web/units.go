package web

import (
	"net/http"

	"restaurant-inventory/internal/app"
)

type createUnitRequest struct {
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Precision int    `json:"precision" validate:"min=0,max=6"`
}

type updateUnitRequest struct {
	Code      *string `json:"code"`
	Name      *string `json:"name"`
	Precision *int    `json:"precision" validate:"omitempty,min=0,max=6"`
}

// listUnits handles GET /api/restaurants/{restaurantID}/units.
func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	units, err := h.svc.ListUnits(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, units)
}

// createUnit handles POST /api/restaurants/{restaurantID}/units.
func (h *Handler) createUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	var req createUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateStruct(w, r, req) {
		return
	}

	unit, err := h.svc.CreateUnit(r.Context(), app.CreateUnitRequest{
		RestaurantID: id,
		Code:         req.Code,
		Name:         req.Name,
		Precision:    req.Precision,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, unit, http.StatusCreated)
}

// getUnit handles GET /api/restaurants/{restaurantID}/units/{unitID}.
func (h *Handler) getUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	unitID, ok := intParam(w, r, "unitID")
	if !ok {
		return
	}

	unit, err := h.svc.GetUnit(r.Context(), id, unitID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, unit)
}

// updateUnit handles PATCH /api/restaurants/{restaurantID}/units/{unitID}.
func (h *Handler) updateUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	unitID, ok := intParam(w, r, "unitID")
	if !ok {
		return
	}

	var req updateUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateStruct(w, r, req) {
		return
	}

	unit, err := h.svc.UpdateUnit(r.Context(), app.UpdateUnitRequest{
		RestaurantID: id,
		UnitID:       unitID,
		Code:         req.Code,
		Name:         req.Name,
		Precision:    req.Precision,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, unit)
}

// deleteUnit handles DELETE /api/restaurants/{restaurantID}/units/{unitID}.
// Blocked with 409 while ingredients still reference the unit.
func (h *Handler) deleteUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	unitID, ok := intParam(w, r, "unitID")
	if !ok {
		return
	}

	if err := h.svc.DeleteUnit(r.Context(), id, unitID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		OK bool `json:"ok"`
	}
	writeJSON(w, response{OK: true})
}
