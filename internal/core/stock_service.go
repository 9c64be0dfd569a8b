package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockCatalog owns item records and their stock/cost mutations. Quantity and
// unit cost change only through ApplyStockDelta(Tx), which the purchase ledger
// calls inside its transaction; sales flows read items but never write cost
// fields.
type StockCatalog interface {
	// GetItem returns an item by id.
	GetItem(ctx context.Context, id int) (*StockItem, error)

	// ListItems returns active items, optionally filtered by a case-insensitive
	// substring match on code or name. Empty query returns everything.
	ListItems(ctx context.Context, query string) ([]StockItem, error)

	// CreateItem adds a catalog item with zero stock.
	CreateItem(ctx context.Context, input StockItemInput) (*StockItem, error)

	// ApplyStockDelta adjusts an item's quantity on hand by qtyDelta in its own
	// transaction. newUnitCost, if non-nil, is fed through the costing policy.
	ApplyStockDelta(ctx context.Context, itemID int, qtyDelta decimal.Decimal, newUnitCost *decimal.Decimal) error

	// ApplyStockDeltaTx is ApplyStockDelta inside a caller-provided transaction.
	// The item row is locked FOR UPDATE and the quantity change is a relative
	// increment, so concurrent purchases of the same item serialize instead of
	// losing updates. Driving the quantity below zero fails the transaction.
	ApplyStockDeltaTx(ctx context.Context, tx pgx.Tx, itemID int, qtyDelta decimal.Decimal, newUnitCost *decimal.Decimal) error
}

// StockItemInput holds the fields required to create a stock item.
type StockItemInput struct {
	Code           string
	Name           string
	Unit           string
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
}

type stockCatalog struct {
	pool   *pgxpool.Pool
	policy CostPolicy
}

// NewStockCatalog constructs a StockCatalog backed by PostgreSQL. policy
// decides the carrying cost after each receipt; nil defaults to LastCostPolicy.
func NewStockCatalog(pool *pgxpool.Pool, policy CostPolicy) StockCatalog {
	if policy == nil {
		policy = LastCostPolicy
	}
	return &stockCatalog{pool: pool, policy: policy}
}

const stockItemColumns = `id, code, name, unit, qty_on_hand, unit_cost,
       retail_price, wholesale_price, is_active, created_at, updated_at`

func scanStockItem(row pgx.Row) (*StockItem, error) {
	it := &StockItem{}
	err := row.Scan(
		&it.ID, &it.Code, &it.Name, &it.Unit, &it.QtyOnHand, &it.UnitCost,
		&it.RetailPrice, &it.WholesalePrice, &it.IsActive, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (c *stockCatalog) GetItem(ctx context.Context, id int) (*StockItem, error) {
	it, err := scanStockItem(c.pool.QueryRow(ctx,
		"SELECT "+stockItemColumns+" FROM stock_items WHERE id = $1", id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "stock item", ID: id}
		}
		return nil, &PersistenceError{Op: fmt.Sprintf("get stock item %d", id), Err: err}
	}
	return it, nil
}

func (c *stockCatalog) ListItems(ctx context.Context, query string) ([]StockItem, error) {
	sql := "SELECT " + stockItemColumns + " FROM stock_items WHERE is_active"
	args := []any{}
	if q := strings.TrimSpace(query); q != "" {
		sql += " AND (name ILIKE $1 OR code ILIKE $1)"
		args = append(args, "%"+q+"%")
	}
	sql += " ORDER BY name"

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list stock items", Err: err}
	}
	defer rows.Close()

	var items []StockItem
	for rows.Next() {
		it := &StockItem{}
		if err := rows.Scan(
			&it.ID, &it.Code, &it.Name, &it.Unit, &it.QtyOnHand, &it.UnitCost,
			&it.RetailPrice, &it.WholesalePrice, &it.IsActive, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, &PersistenceError{Op: "scan stock item", Err: err}
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (c *stockCatalog) CreateItem(ctx context.Context, input StockItemInput) (*StockItem, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, validationErrorf("stock item code and name must not be empty")
	}
	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}

	it, err := scanStockItem(c.pool.QueryRow(ctx, `
		INSERT INTO stock_items (code, name, unit, retail_price, wholesale_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+stockItemColumns,
		code, name, unit, input.RetailPrice, input.WholesalePrice,
	))
	if err != nil {
		if classified := classifyPgError("create stock item", err); errors.As(classified, new(*ConcurrencyError)) {
			return nil, validationErrorf("stock item code %q already exists", code)
		}
		return nil, &PersistenceError{Op: "create stock item", Err: err}
	}
	return it, nil
}

func (c *stockCatalog) ApplyStockDelta(ctx context.Context, itemID int, qtyDelta decimal.Decimal, newUnitCost *decimal.Decimal) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin stock delta", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := c.ApplyStockDeltaTx(ctx, tx, itemID, qtyDelta, newUnitCost); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyPgError("commit stock delta", err)
	}
	return nil
}

func (c *stockCatalog) ApplyStockDeltaTx(ctx context.Context, tx pgx.Tx, itemID int, qtyDelta decimal.Decimal, newUnitCost *decimal.Decimal) error {
	var oldQty, oldCost decimal.Decimal
	err := tx.QueryRow(ctx,
		"SELECT qty_on_hand, unit_cost FROM stock_items WHERE id = $1 AND is_active FOR UPDATE",
		itemID,
	).Scan(&oldQty, &oldCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "stock item", ID: itemID}
		}
		return classifyPgError(fmt.Sprintf("lock stock item %d", itemID), err)
	}

	cost := oldCost
	if newUnitCost != nil {
		if newUnitCost.IsNegative() {
			return validationErrorf("unit cost for item %d must not be negative", itemID)
		}
		cost = c.policy(oldQty, oldCost, qtyDelta, *newUnitCost)
	}

	// Relative increment, not read-then-write: the locked row plus the
	// qty_on_hand >= 0 CHECK make concurrent adjustments safe.
	_, err = tx.Exec(ctx, `
		UPDATE stock_items
		SET qty_on_hand = qty_on_hand + $1, unit_cost = $2, updated_at = NOW()
		WHERE id = $3`,
		qtyDelta, cost, itemID,
	)
	if err != nil {
		if isCheckViolation(err) {
			return validationErrorf("stock for item %d cannot go below zero", itemID)
		}
		return classifyPgError(fmt.Sprintf("apply stock delta to item %d", itemID), err)
	}
	return nil
}
