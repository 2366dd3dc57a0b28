package app

import "restaurant-inventory/internal/core"

// ApplyInvoiceResult is returned by ApplyInvoice. Items lists the committed
// lines in order; on a mid-batch failure it is shorter than the request.
type ApplyInvoiceResult struct {
	Items []core.IngestionOutcome
}
