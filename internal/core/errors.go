package core

import "errors"

// Sentinel errors the web adapter maps onto HTTP statuses.
var (
	// ErrNotFound marks a lookup that matched no row for the tenant.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate marks a create that collided with a per-tenant uniqueness
	// constraint (unit code or ingredient SKU).
	ErrDuplicate = errors.New("already exists")

	// ErrUnitInUse marks a unit delete blocked by ingredients referencing it.
	ErrUnitInUse = errors.New("unit is in use by ingredients")

	// ErrInsufficientStock marks an adjustment that would drive an
	// ingredient's on-hand quantity negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNoLineItems marks an invoice whose text yielded zero usable lines.
	ErrNoLineItems = errors.New("could not read any line items")

	// ErrNothingToApply marks an apply call whose selected, positive-quantity
	// subset is empty.
	ErrNothingToApply = errors.New("no items selected to apply")
)
