package shopconfig

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/volume-discount/internal/rule"
)

const getConfigSQL = `
SELECT value FROM shop_discount_configs
WHERE shop_domain = $1 AND namespace = $2 AND meta_key = $3`

const upsertConfigSQL = `
INSERT INTO shop_discount_configs (id, shop_domain, namespace, meta_key, value, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (shop_domain, namespace, meta_key)
DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// DBTX is the slice of pgx behaviour the store needs; *pgxpool.Pool satisfies it.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists the raw rule blob under the namespaced key scoped to a shop.
// The blob is stored verbatim as authored; the store never interprets it.
type Store struct {
	DB DBTX
}

// Get returns the stored blob for the shop. A missing row is not an error.
func (s *Store) Get(ctx context.Context, shopDomain string) (string, bool, error) {
	if s == nil || s.DB == nil {
		return "", false, errors.New("shopconfig store not configured")
	}
	var value string
	err := s.DB.QueryRow(ctx, getConfigSQL, shopDomain, rule.MetafieldNamespace, rule.MetafieldKey).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Upsert writes the blob for the shop, replacing any previous value.
func (s *Store) Upsert(ctx context.Context, shopDomain, value string) error {
	if s == nil || s.DB == nil {
		return errors.New("shopconfig store not configured")
	}
	_, err := s.DB.Exec(ctx, upsertConfigSQL, uuid.New(), shopDomain, rule.MetafieldNamespace, rule.MetafieldKey, value)
	return err
}
