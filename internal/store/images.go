package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// ImageParent selects the images of one parent. Exactly one field should be set.
type ImageParent struct {
	ItemID           int64
	PickupProtocolID int64
	ReturnProtocolID int64
}

func (p ImageParent) where() (string, int64) {
	switch {
	case p.ItemID != 0:
		return "item_id = ?", p.ItemID
	case p.PickupProtocolID != 0:
		return "pickup_protocol_id = ?", p.PickupProtocolID
	default:
		return "return_protocol_id = ?", p.ReturnProtocolID
	}
}

// CreateImage stores an image. img.Data must already be processed.
func CreateImage(ctx context.Context, db *sql.DB, img *model.Image) (*model.Image, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO images (owner_id, item_id, pickup_protocol_id, return_protocol_id, data, mime)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		img.OwnerID, img.ItemID, img.PickupProtocolID, img.ReturnProtocolID, img.Data, img.MIME,
	)
	if err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting image id: %w", err)
	}

	return GetImage(ctx, db, id)
}

// GetImage returns an image with its data and its parent loaded. Protocol
// parents come with their loan and the loan's item.
func GetImage(ctx context.Context, db *sql.DB, id int64) (*model.Image, error) {
	img := &model.Image{}
	var itemID, pickupID, returnID sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT id, owner_id, item_id, pickup_protocol_id, return_protocol_id, data, mime, created_at
		 FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.OwnerID, &itemID, &pickupID, &returnID, &img.Data, &img.MIME, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}

	switch {
	case itemID.Valid:
		img.ItemID = &itemID.Int64
		if img.Item, err = GetItem(ctx, db, itemID.Int64); err != nil {
			return nil, err
		}
	case pickupID.Valid:
		img.PickupProtocolID = &pickupID.Int64
		if img.PickupProtocol, err = GetPickupProtocol(ctx, db, pickupID.Int64); err != nil {
			return nil, err
		}
	case returnID.Valid:
		img.ReturnProtocolID = &returnID.Int64
		if img.ReturnProtocol, err = GetReturnProtocol(ctx, db, returnID.Int64); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// ListImages returns image metadata (without data) for a parent, oldest first.
func ListImages(ctx context.Context, db *sql.DB, parent ImageParent) ([]model.Image, error) {
	where, arg := parent.where()
	rows, err := db.QueryContext(ctx,
		`SELECT id, owner_id, item_id, pickup_protocol_id, return_protocol_id, mime, created_at
		 FROM images WHERE `+where+` ORDER BY id`, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		var img model.Image
		var itemID, pickupID, returnID sql.NullInt64
		if err := rows.Scan(&img.ID, &img.OwnerID, &itemID, &pickupID, &returnID, &img.MIME, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		if itemID.Valid {
			img.ItemID = &itemID.Int64
		}
		if pickupID.Valid {
			img.PickupProtocolID = &pickupID.Int64
		}
		if returnID.Valid {
			img.ReturnProtocolID = &returnID.Int64
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image. Profiles pointing at it lose their picture.
func DeleteImage(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
