package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

const itemColumns = `id, owner_id, category_id, name, description, price_per_day, status, created_at, updated_at, deleted_at`

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	Status     model.ItemStatus
	OwnerID    int64
	CategoryID int64
}

// CreateItem creates a new item in the approving state.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	status := item.Status
	if status == "" {
		status = model.ItemStatusApproving
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (owner_id, category_id, name, description, price_per_day, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.OwnerID, item.CategoryID, item.Name, item.Description, item.PricePerDay, status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items matching the filter.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE status != 'deleted'`
	var args []any
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.OwnerID != 0 {
		query += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's listing fields.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET category_id = ?, name = ?, description = ?, price_per_day = ?, status = ?,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status != 'deleted'`,
		item.CategoryID, item.Name, item.Description, item.PricePerDay, item.Status, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item. The row stays so loans keep their history.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET status = 'deleted', deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status != 'deleted'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	var categoryID sql.NullInt64
	if err := row.Scan(&item.ID, &item.OwnerID, &categoryID, &item.Name, &description,
		&item.PricePerDay, &item.Status, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
		return nil, err
	}
	item.Description = description.String
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	return item, nil
}
