package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// GetProfile returns a user's profile with aggregated stats.
func GetProfile(ctx context.Context, db *sql.DB, userID int64) (*model.Profile, error) {
	p := &model.Profile{}
	var bio sql.NullString
	var imageID sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT p.user_id, u.username, p.display_name, p.bio, p.image_id, p.created_at, p.updated_at
		 FROM profiles p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ? AND u.deleted_at IS NULL`, userID,
	).Scan(&p.UserID, &p.Username, &p.DisplayName, &bio, &imageID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	p.Bio = bio.String
	if imageID.Valid {
		p.ImageID = &imageID.Int64
	}

	if p.Stats, err = profileStats(ctx, db, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// profileStats counts a user's activity. Reviews are those written about the
// user by the other party of a loan.
func profileStats(ctx context.Context, db *sql.DB, userID int64) (model.ProfileStats, error) {
	var s model.ProfileStats
	err := db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM items WHERE owner_id = ?1 AND status != 'deleted'),
		   (SELECT COUNT(*) FROM loans WHERE tenant_id = ?1),
		   (SELECT COUNT(*) FROM loans l JOIN items i ON i.id = l.item_id WHERE i.owner_id = ?1)`,
		userID,
	).Scan(&s.ItemsOwned, &s.LoansAsTenant, &s.LoansAsOwner)
	if err != nil {
		return s, fmt.Errorf("counting profile stats: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(r.id), COALESCE(AVG(r.rating), 0)
		 FROM reviews r
		 JOIN loans l ON l.id = r.loan_id
		 JOIN items i ON i.id = l.item_id
		 WHERE r.author_id != ?1 AND (l.tenant_id = ?1 OR i.owner_id = ?1)`,
		userID,
	).Scan(&s.Reviews, &s.AverageRating)
	if err != nil {
		return s, fmt.Errorf("averaging reviews: %w", err)
	}
	return s, nil
}

// UpdateProfile updates the editable profile fields.
func UpdateProfile(ctx context.Context, db *sql.DB, userID int64, displayName, bio string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE profiles SET display_name = ?, bio = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		displayName, bio, userID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

// SetProfileImage stores img and points the profile at it, replacing any
// previous picture.
func SetProfileImage(ctx context.Context, db *sql.DB, userID int64, data []byte, mime string) (*model.Image, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var previous sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT image_id FROM profiles WHERE user_id = ?`, userID,
	).Scan(&previous); err != nil {
		return nil, fmt.Errorf("getting profile image: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO images (owner_id, data, mime) VALUES (?, ?, ?)`, userID, data, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("creating profile image: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting image id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET image_id = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`, id, userID,
	); err != nil {
		return nil, fmt.Errorf("setting profile image: %w", err)
	}
	if previous.Valid {
		if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, previous.Int64); err != nil {
			return nil, fmt.Errorf("deleting old profile image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing profile image: %w", err)
	}
	return GetImage(ctx, db, id)
}
