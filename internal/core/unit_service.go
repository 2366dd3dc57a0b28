package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitService manages a restaurant's measurement units.
type UnitService interface {
	// List returns the restaurant's units ordered by code.
	List(ctx context.Context, restaurantID int) ([]Unit, error)
	Create(ctx context.Context, restaurantID int, code, name string, precision int) (*Unit, error)
	Get(ctx context.Context, restaurantID, unitID int) (*Unit, error)
	Update(ctx context.Context, restaurantID, unitID int, patch UnitPatch) (*Unit, error)
	// Delete removes a unit. Fails with ErrUnitInUse while ingredients still
	// reference it as their base unit.
	Delete(ctx context.Context, restaurantID, unitID int) error
	// ResolveOrCreate returns the unit with the given code, creating it from
	// the catalog's metadata if the restaurant does not have it yet. The
	// insert races safely against concurrent callers: on conflict the existing
	// row is re-fetched rather than duplicated.
	ResolveOrCreate(ctx context.Context, restaurantID int, code string, catalog UnitCatalog) (*Unit, error)
}

// UnitPatch carries the fields of a partial unit update; nil means unchanged.
type UnitPatch struct {
	Code      *string
	Name      *string
	Precision *int
}

type unitService struct {
	pool *pgxpool.Pool
}

func NewUnitService(pool *pgxpool.Pool) UnitService {
	return &unitService{pool: pool}
}

const unitColumns = "id, restaurant_id, code, name, precision, created_at, updated_at"

func scanUnit(row pgx.Row) (*Unit, error) {
	var u Unit
	err := row.Scan(&u.ID, &u.RestaurantID, &u.Code, &u.Name, &u.Precision, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *unitService) List(ctx context.Context, restaurantID int) ([]Unit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE restaurant_id = $1
		ORDER BY code
	`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.RestaurantID, &u.Code, &u.Name, &u.Precision, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *unitService) Create(ctx context.Context, restaurantID int, code, name string, precision int) (*Unit, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("unit code and name are required")
	}
	if precision < 0 || precision > 6 {
		return nil, fmt.Errorf("unit precision must be between 0 and 6, got %d", precision)
	}

	unit, err := scanUnit(s.pool.QueryRow(ctx, `
		INSERT INTO units (restaurant_id, code, name, precision)
		VALUES ($1, $2, $3, $4)
		RETURNING `+unitColumns+`
	`, restaurantID, code, strings.TrimSpace(name), precision))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("unit %s: %w", code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return unit, nil
}

func (s *unitService) Get(ctx context.Context, restaurantID, unitID int) (*Unit, error) {
	unit, err := scanUnit(s.pool.QueryRow(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE restaurant_id = $1 AND id = $2
	`, restaurantID, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch unit: %w", err)
	}
	return unit, nil
}

func (s *unitService) Update(ctx context.Context, restaurantID, unitID int, patch UnitPatch) (*Unit, error) {
	current, err := s.Get(ctx, restaurantID, unitID)
	if err != nil {
		return nil, err
	}

	code, name, precision := current.Code, current.Name, current.Precision
	if patch.Code != nil {
		code = strings.ToUpper(strings.TrimSpace(*patch.Code))
	}
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
	}
	if patch.Precision != nil {
		precision = *patch.Precision
	}
	if code == "" || name == "" {
		return nil, fmt.Errorf("unit code and name cannot be blank")
	}
	if precision < 0 || precision > 6 {
		return nil, fmt.Errorf("unit precision must be between 0 and 6, got %d", precision)
	}

	unit, err := scanUnit(s.pool.QueryRow(ctx, `
		UPDATE units
		SET code = $3, name = $4, precision = $5, updated_at = NOW()
		WHERE restaurant_id = $1 AND id = $2
		RETURNING `+unitColumns+`
	`, restaurantID, unitID, code, name, precision))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("unit %s: %w", code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}
	return unit, nil
}

func (s *unitService) Delete(ctx context.Context, restaurantID, unitID int) error {
	var inUse int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM ingredients
		WHERE restaurant_id = $1 AND base_unit_id = $2
	`, restaurantID, unitID).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("failed to check unit usage: %w", err)
	}
	if inUse > 0 {
		return ErrUnitInUse
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM units WHERE restaurant_id = $1 AND id = $2
	`, restaurantID, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *unitService) ResolveOrCreate(ctx context.Context, restaurantID int, code string, catalog UnitCatalog) (*Unit, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("unit code is required")
	}
	meta := catalog.Meta(code)

	// Atomic get-or-insert: the conflict re-fetch below covers the window
	// where a concurrent request created the same code first.
	unit, err := scanUnit(s.pool.QueryRow(ctx, `
		INSERT INTO units (restaurant_id, code, name, precision)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (restaurant_id, code) DO NOTHING
		RETURNING `+unitColumns+`
	`, restaurantID, code, meta.Name, meta.Precision))
	if err == nil {
		return unit, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to create unit %s: %w", code, err)
	}

	unit, err = scanUnit(s.pool.QueryRow(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE restaurant_id = $1 AND code = $2
	`, restaurantID, code))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unit %s after conflict: %w", code, err)
	}
	return unit, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
