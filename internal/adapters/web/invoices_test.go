package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	web "restaurant-inventory/internal/adapters/web"
	"restaurant-inventory/internal/app"
	"restaurant-inventory/internal/core"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// stubService satisfies ApplicationService for handler tests; only the
// methods a test exercises are implemented.
type stubService struct {
	app.ApplicationService
	applyCalls  int
	applyResult *app.ApplyInvoiceResult
	applyErr    error
}

func (s *stubService) ApplyInvoice(ctx context.Context, req app.ApplyInvoiceRequest) (*app.ApplyInvoiceResult, error) {
	s.applyCalls++
	if s.applyResult != nil || s.applyErr != nil {
		return s.applyResult, s.applyErr
	}
	outcomes := make([]core.IngestionOutcome, 0, len(req.Items))
	for _, item := range req.Items {
		outcomes = append(outcomes, core.IngestionOutcome{
			SKU:           item.SKU,
			Name:          item.Name,
			Created:       true,
			QuantityAdded: item.Quantity,
			UnitCode:      item.UnitCode,
			Category:      item.Category,
		})
	}
	return &app.ApplyInvoiceResult{Items: outcomes}, nil
}

func newTestHandler(svc app.ApplicationService) http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return web.NewHandler(svc, "", log)
}

func postApply(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/restaurants/1/invoices/apply", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestInvoiceApply_RejectsNonPositiveQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
	}{
		{"zero quantity", "0"},
		{"negative quantity", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			handler := newTestHandler(svc)

			body := `{"items":[{"sku":"10023","name":"Crushed Tomatoes","quantity":` + tt.quantity + `,"unit_code":"CS","category":"dry"}]}`
			rec := postApply(t, handler, body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != "VALIDATION_FAILED" {
				t.Errorf("expected VALIDATION_FAILED, got %s", resp.Code)
			}
			if svc.applyCalls != 0 {
				t.Errorf("expected service untouched, got %d calls", svc.applyCalls)
			}
		})
	}
}

func TestInvoiceApply_Success(t *testing.T) {
	svc := &stubService{}
	handler := newTestHandler(svc)

	body := `{"invoice":{"number":"580442"},"items":[{"sku":"10023","name":"Crushed Tomatoes","quantity":10,"unit_code":"CS","category":"dry"}]}`
	rec := postApply(t, handler, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Items []core.IngestionOutcome `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].SKU != "10023" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
	if !resp.Items[0].QuantityAdded.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected quantity added 10, got %s", resp.Items[0].QuantityAdded)
	}
}

func TestInvoiceApply_PartialFailureResponse(t *testing.T) {
	// A mid-batch persistence failure surfaces as 500 PARTIAL_APPLY carrying
	// the lines that did commit.
	svc := &stubService{
		applyResult: &app.ApplyInvoiceResult{
			Items: []core.IngestionOutcome{{SKU: "10023", Name: "Crushed Tomatoes", Created: true}},
		},
		applyErr: errors.New("line 20077: failed to resolve ingredient"),
	}
	handler := newTestHandler(svc)

	body := `{"items":[` +
		`{"sku":"10023","name":"Crushed Tomatoes","quantity":10,"unit_code":"CS","category":"dry"},` +
		`{"sku":"20077","name":"Chicken Breast","quantity":2,"unit_code":"EA","category":"meat"}]}`
	rec := postApply(t, handler, body)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error string                  `json:"error"`
		Code  string                  `json:"code"`
		Items []core.IngestionOutcome `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Code != "PARTIAL_APPLY" {
		t.Errorf("expected PARTIAL_APPLY, got %s", resp.Code)
	}
	if len(resp.Items) != 1 || resp.Items[0].SKU != "10023" {
		t.Errorf("expected the committed line reported, got %+v", resp.Items)
	}
	if !strings.Contains(resp.Error, "20077") {
		t.Errorf("expected error naming the failed line, got %q", resp.Error)
	}
}
