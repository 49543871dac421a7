package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamingty/storefront/internal/domain"
	"github.com/gamingty/storefront/pkg/database"
	apperrors "github.com/gamingty/storefront/pkg/errors"
)

//go:embed *.up.sql
var migrationFS embed.FS

// Migrate applies the cart schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	return database.RunMigrations(ctx, pool, migrationFS, logger)
}

// DB is the subset of pgxpool.Pool used by the repository. It is satisfied by
// both *pgxpool.Pool and pgxmock's pool interface.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CartRepository implements repository.CartRepository using PostgreSQL.
// Carts are stored as whole JSONB snapshots with a version column for
// optimistic concurrency, mirroring the Redis layout so either backend can
// serve the same traffic.
type CartRepository struct {
	db DB
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db}
}

// Get retrieves a cart snapshot by client ID.
func (r *CartRepository) Get(ctx context.Context, clientID string) (*domain.Cart, error) {
	query := `SELECT snapshot FROM carts WHERE client_id = $1`

	var data []byte
	if err := r.db.QueryRow(ctx, query, clientID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart", clientID)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, apperrors.NotFound("cart", clientID)
	}

	return &cart, nil
}

// Save persists a cart, overwriting any existing snapshot.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	query := `
		INSERT INTO carts (client_id, snapshot, version, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, version = EXCLUDED.version, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, cart.ClientID, data, cart.Version); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

// SaveIfVersion persists the cart only when the stored row's version still
// equals expectedVersion. The conditional upsert makes the check-and-set a
// single statement, so no explicit transaction is needed.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	cart.Version = expectedVersion + 1

	data, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("marshal cart: %w", err)
	}

	query := `
		INSERT INTO carts (client_id, snapshot, version, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, version = EXCLUDED.version, updated_at = NOW()
		WHERE carts.version = $4`

	ct, err := r.db.Exec(ctx, query, cart.ClientID, data, cart.Version, expectedVersion)
	if err != nil {
		cart.Version = expectedVersion
		return false, fmt.Errorf("save cart: %w", err)
	}

	if ct.RowsAffected() == 0 {
		cart.Version = expectedVersion
		return false, nil
	}

	return true, nil
}

// Delete removes a cart by client ID.
func (r *CartRepository) Delete(ctx context.Context, clientID string) error {
	query := `DELETE FROM carts WHERE client_id = $1`

	if _, err := r.db.Exec(ctx, query, clientID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	return nil
}
