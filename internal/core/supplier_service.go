package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierDirectory resolves supplier names to stable identifiers and manages
// the supplier master list. Suppliers are deduplicated by name
// (case-insensitive) and deactivated rather than deleted.
type SupplierDirectory interface {
	// Resolve returns the id of the active supplier matching name, creating
	// one on first use. A blank name resolves to nil without error — such
	// purchases keep only the free-text name snapshot.
	Resolve(ctx context.Context, name string) (*int, error)

	// ResolveTx is Resolve inside a caller-provided transaction. Used by
	// PurchaseLedger to keep supplier creation atomic with the purchase.
	ResolveTx(ctx context.Context, tx pgx.Tx, name string) (*int, error)

	// ListSuppliers returns all active suppliers ordered by name.
	ListSuppliers(ctx context.Context) ([]Supplier, error)

	// CreateSupplier creates an active supplier directly.
	CreateSupplier(ctx context.Context, name string) (*Supplier, error)

	// DeactivateSupplier marks a supplier inactive. Purchases referencing it
	// keep their supplier_id; the name becomes available for re-creation.
	DeactivateSupplier(ctx context.Context, id int) error
}

type supplierDirectory struct {
	pool *pgxpool.Pool
}

// NewSupplierDirectory constructs a SupplierDirectory backed by PostgreSQL.
func NewSupplierDirectory(pool *pgxpool.Pool) SupplierDirectory {
	return &supplierDirectory{pool: pool}
}

func (d *supplierDirectory) Resolve(ctx context.Context, name string) (*int, error) {
	return resolveSupplier(ctx, d.pool, name)
}

func (d *supplierDirectory) ResolveTx(ctx context.Context, tx pgx.Tx, name string) (*int, error) {
	return resolveSupplier(ctx, tx, name)
}

// querier is the subset of pgxpool.Pool / pgx.Tx the directory needs, so
// Resolve works both standalone and inside a purchase transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func resolveSupplier(ctx context.Context, q querier, name string) (*int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int
	err := q.QueryRow(ctx,
		"SELECT id FROM suppliers WHERE LOWER(name) = LOWER($1) AND is_active",
		name,
	).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &PersistenceError{Op: "resolve supplier", Err: err}
	}

	// First purchase from this supplier: create it. A concurrent Resolve for
	// the same name trips the partial unique index on LOWER(name); re-reading
	// the winner's row keeps both callers on one supplier id.
	err = q.QueryRow(ctx,
		"INSERT INTO suppliers (name, is_active) VALUES ($1, true) RETURNING id",
		name,
	).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if conflictErr := classifyPgError("create supplier", err); errors.As(conflictErr, new(*ConcurrencyError)) {
		if rereadErr := q.QueryRow(ctx,
			"SELECT id FROM suppliers WHERE LOWER(name) = LOWER($1) AND is_active",
			name,
		).Scan(&id); rereadErr == nil {
			return &id, nil
		}
		return nil, conflictErr
	}
	return nil, &PersistenceError{Op: "create supplier", Err: err}
}

func (d *supplierDirectory) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, is_active, created_at
		FROM suppliers
		WHERE is_active
		ORDER BY name`,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list suppliers", Err: err}
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, &PersistenceError{Op: "scan supplier", Err: err}
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (d *supplierDirectory) CreateSupplier(ctx context.Context, name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("supplier name must not be empty")
	}

	s := &Supplier{}
	err := d.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, is_active)
		VALUES ($1, true)
		RETURNING id, name, is_active, created_at`,
		name,
	).Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if classified := classifyPgError("create supplier", err); errors.As(classified, new(*ConcurrencyError)) {
			return nil, validationErrorf("supplier %q already exists", name)
		}
		return nil, &PersistenceError{Op: "create supplier", Err: err}
	}
	return s, nil
}

func (d *supplierDirectory) DeactivateSupplier(ctx context.Context, id int) error {
	tag, err := d.pool.Exec(ctx,
		"UPDATE suppliers SET is_active = false WHERE id = $1 AND is_active",
		id,
	)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("deactivate supplier %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "supplier", ID: id}
	}
	return nil
}
