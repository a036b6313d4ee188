package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned for unknown or foreign cards.
var ErrNotFound = errors.New("card not found")

// Repository persists cards.
type Repository interface {
	Create(ctx context.Context, card Card) error
	ListByUser(ctx context.Context, userID string) ([]Card, error)
	SetDefault(ctx context.Context, userID, id string) error
}

// PostgresRepository stores cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a card repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a card record.
func (r *PostgresRepository) Create(ctx context.Context, c Card) error {
	cardID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO cards (id, user_id, name, last_four, balance_cents, currency, card_type, gradient, is_default, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		cardID, userID, c.Name, c.LastFour, c.BalanceCents, c.Currency, string(c.Type), c.Gradient, c.IsDefault, c.IsActive, c.CreatedAt.UTC())
	return err
}

// ListByUser returns active cards, default first then oldest.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Card, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, name, last_four, balance_cents, currency, card_type, gradient, is_default, is_active, created_at
        FROM cards WHERE user_id = $1 AND is_active ORDER BY is_default DESC, created_at ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var (
			c         Card
			id, owner uuid.UUID
			kind      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &c.Name, &c.LastFour, &c.BalanceCents, &c.Currency, &kind, &c.Gradient, &c.IsDefault, &c.IsActive, &createdAt); err != nil {
			return nil, err
		}
		c.ID = id.String()
		c.UserID = owner.String()
		c.Type = Type(kind)
		c.CreatedAt = createdAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetDefault marks id as the user's only default card.
func (r *PostgresRepository) SetDefault(ctx context.Context, userID, id string) error {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE cards SET is_default = FALSE WHERE user_id = $1 AND is_default`, ownerID); err != nil {
			return fmt.Errorf("clear default card: %w", err)
		}
		cmd, err := tx.Exec(ctx, `UPDATE cards SET is_default = TRUE WHERE id = $1 AND user_id = $2 AND is_active`, cardID, ownerID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
