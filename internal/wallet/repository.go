package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("wallet not found")
	ErrDuplicate = errors.New("wallet already connected")
)

// Repository persists wallet connections.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	Get(ctx context.Context, userID, id string) (Wallet, error)
	ListByUser(ctx context.Context, userID string) ([]Wallet, error)
	Deactivate(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(wallet.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, user_id, name, address, type, chain_id, is_default, is_active, connected_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		walletID, userID, wallet.Name, wallet.Address, string(wallet.Type), wallet.ChainID, wallet.IsDefault, wallet.IsActive, wallet.ConnectedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// Get fetches an active wallet owned by userID.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Wallet, error) {
	walletUUID, ownerUUID, err := parseIDs(id, userID)
	if err != nil {
		return Wallet{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, name, address, type, chain_id, is_default, is_active, connected_at
        FROM wallets WHERE id = $1 AND user_id = $2 AND is_active`, walletUUID, ownerUUID)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrNotFound
	}
	return w, err
}

// ListByUser returns active wallets, default first then newest.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Wallet, error) {
	ownerUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, name, address, type, chain_id, is_default, is_active, connected_at
        FROM wallets WHERE user_id = $1 AND is_active ORDER BY is_default DESC, connected_at DESC`, ownerUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Deactivate soft-deletes a wallet and clears its default flag.
func (r *PostgresRepository) Deactivate(ctx context.Context, userID, id string) error {
	walletUUID, ownerUUID, err := parseIDs(id, userID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallets SET is_active = FALSE, is_default = FALSE WHERE id = $1 AND user_id = $2 AND is_active`, walletUUID, ownerUUID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault marks id as the only default wallet of userID.
func (r *PostgresRepository) SetDefault(ctx context.Context, userID, id string) error {
	walletUUID, ownerUUID, err := parseIDs(id, userID)
	if err != nil {
		return err
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE wallets SET is_default = FALSE WHERE user_id = $1 AND is_default`, ownerUUID); err != nil {
		return fmt.Errorf("clear default wallet: %w", err)
	}
	cmd, err := tx.Exec(ctx, `UPDATE wallets SET is_default = TRUE WHERE id = $1 AND user_id = $2 AND is_active`, walletUUID, ownerUUID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w           Wallet
		idVal       uuid.UUID
		userID      uuid.UUID
		kind        string
		connectedAt time.Time
	)
	if err := row.Scan(&idVal, &userID, &w.Name, &w.Address, &kind, &w.ChainID, &w.IsDefault, &w.IsActive, &connectedAt); err != nil {
		return Wallet{}, err
	}
	w.ID = idVal.String()
	w.UserID = userID.String()
	w.Type = Provider(kind)
	w.ConnectedAt = connectedAt.UTC()
	return w, nil
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrNotFound
	}
	ownerUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrNotFound
	}
	return walletUUID, ownerUUID, nil
}
