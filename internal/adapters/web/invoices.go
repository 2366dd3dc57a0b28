package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"restaurant-inventory/internal/app"
	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
)

type invoiceHeader struct {
	Number        string `json:"number,omitempty"`
	Date          string `json:"date,omitempty"`
	PurchaseOrder string `json:"purchase_order,omitempty"`
}

type previewResponse struct {
	Invoice invoiceHeader      `json:"invoice"`
	Items   []core.PreviewLine `json:"items"`
}

// invoicePreview handles POST /api/restaurants/{restaurantID}/invoices/preview.
// Multipart upload with the invoice PDF under the "file" field. Read-only.
func (h *Handler) invoicePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(uploadBodyLimit); err != nil {
		writeError(w, r, "invalid multipart body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing invoice file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "failed to read invoice file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	preview, err := h.svc.PreviewInvoice(r.Context(), id, data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, previewResponse{
		Invoice: invoiceHeader{
			Number:        preview.InvoiceNumber,
			Date:          preview.InvoiceDate,
			PurchaseOrder: preview.PurchaseOrder,
		},
		Items: preview.Items,
	})
}

type applyInvoiceItem struct {
	SKU          string           `json:"sku" validate:"required"`
	Name         string           `json:"name" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCode     string           `json:"unit_code" validate:"required"`
	Category     core.Category    `json:"category" validate:"required,oneof=dry produce meat dairy bar seafood grocery"`
	Brand        string           `json:"brand"`
	PackSize     string           `json:"pack_size"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	ExtendedCost *decimal.Decimal `json:"extended_cost"`
	Apply        *bool            `json:"apply"`
}

type applyInvoiceRequest struct {
	Invoice *invoiceHeader     `json:"invoice"`
	Items   []applyInvoiceItem `json:"items" validate:"required,min=1,dive"`
}

// applyFailureResponse reports a mid-batch persistence failure. Items lists
// the lines that committed before the failure; they are not rolled back.
type applyFailureResponse struct {
	Error     string                  `json:"error"`
	Code      string                  `json:"code"`
	RequestID string                  `json:"request_id,omitempty"`
	Items     []core.IngestionOutcome `json:"items"`
}

// invoiceApply handles POST /api/restaurants/{restaurantID}/invoices/apply.
// Commits the reviewer-approved lines; not idempotent.
func (h *Handler) invoiceApply(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	var req applyInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateStruct(w, r, req) {
		return
	}
	// The validator cannot see inside decimal values; quantities are checked here.
	for _, item := range req.Items {
		if !item.Quantity.IsPositive() {
			writeError(w, r, "item "+item.SKU+": quantity must be positive", "VALIDATION_FAILED", http.StatusBadRequest)
			return
		}
	}

	items := make([]core.ApplyLine, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, core.ApplyLine{
			NormalizedLine: core.NormalizedLine{
				SKU:          strings.TrimSpace(item.SKU),
				Name:         strings.TrimSpace(item.Name),
				Quantity:     item.Quantity,
				UnitCode:     item.UnitCode,
				Category:     item.Category,
				Brand:        strings.TrimSpace(item.Brand),
				PackSize:     strings.TrimSpace(item.PackSize),
				UnitCost:     item.UnitCost,
				ExtendedCost: item.ExtendedCost,
			},
			Apply: item.Apply,
		})
	}

	appReq := app.ApplyInvoiceRequest{
		RestaurantID: id,
		Actor:        r.Header.Get("X-Actor"),
		Items:        items,
	}
	if req.Invoice != nil {
		appReq.InvoiceNumber = strings.TrimSpace(req.Invoice.Number)
		appReq.PurchaseOrder = strings.TrimSpace(req.Invoice.PurchaseOrder)
	}

	result, err := h.svc.ApplyInvoice(r.Context(), appReq)
	if err != nil {
		if result != nil && len(result.Items) > 0 {
			// Partial application: report the failure alongside what landed.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(applyFailureResponse{
				Error:     err.Error(),
				Code:      "PARTIAL_APPLY",
				RequestID: requestIDFromContext(r.Context()),
				Items:     result.Items,
			})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Items []core.IngestionOutcome `json:"items"`
	}
	writeJSON(w, response{Items: result.Items})
}
