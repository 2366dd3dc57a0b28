package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"restaurant-inventory/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	jsonBodyLimit   = 1 << 20  // 1 MB for JSON endpoints
	uploadBodyLimit = 15 << 20 // 15 MB for invoice file uploads
)

// Handler holds the ApplicationService, the chi router, and the request validator.
type Handler struct {
	svc      app.ApplicationService
	router   chi.Router
	validate *validator.Validate
	log      *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *logrus.Logger) http.Handler {
	h := &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/api/restaurants/{restaurantID}", func(r chi.Router) {
		// Invoice upload: multipart, larger limit than the JSON endpoints.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(uploadBodyLimit))
			r.Post("/invoices/preview", h.invoicePreview)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(jsonBodyLimit))

			r.Post("/invoices/apply", h.invoiceApply)

			r.Get("/units", h.listUnits)
			r.Post("/units", h.createUnit)
			r.Get("/units/{unitID}", h.getUnit)
			r.Patch("/units/{unitID}", h.updateUnit)
			r.Delete("/units/{unitID}", h.deleteUnit)

			r.Get("/ingredients", h.listIngredients)
			r.Post("/ingredients", h.createIngredient)
			r.Get("/ingredients/{ingredientID}", h.getIngredient)
			r.Patch("/ingredients/{ingredientID}", h.updateIngredient)
			r.Delete("/ingredients/{ingredientID}", h.archiveIngredient)
			r.Post("/ingredients/{ingredientID}/adjust", h.adjustIngredient)
			r.Get("/ingredients/{ingredientID}/movements", h.listMovements)

			r.Get("/movements/export", h.exportMovements)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// restaurantID extracts and parses the {restaurantID} URL parameter.
// Returns false after writing a 400 when the parameter is not a positive integer.
func restaurantID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return intParam(w, r, "restaurantID")
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// validateStruct runs the validator over a decoded request and writes a 400
// listing the failing fields when it does not pass.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := h.validate.Struct(v); err != nil {
		writeError(w, r, "invalid request: "+err.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
		return false
	}
	return true
}
