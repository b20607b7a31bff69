package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"thriftmart/internal/model"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository. All of
// its methods operate on a transaction owned by the caller.
func NewCartRepository(logger zerolog.Logger) CartRepository {
	return &cartRepository{
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// SnapshotForUpdate reads and locks the user's cart rows with their current
// product prices. FOR UPDATE OF ci locks only the cart rows; product rows
// stay readable by concurrent checkouts.
func (r *cartRepository) SnapshotForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ci.id, ci.product_id, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at, ci.id
		FOR UPDATE OF ci
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to snapshot cart")
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.CartItemID, &line.ProductID, &line.UnitPrice, &line.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart rows: %w", err)
	}

	return lines, nil
}

// DeleteByIDs removes exactly the snapshotted cart rows.
func (r *cartRepository) DeleteByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().
		Int64("deleted", tag.RowsAffected()).
		Int("expected", len(ids)).
		Msg("cart rows cleared")

	return nil
}
