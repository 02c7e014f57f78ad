package shopconfig

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/volume-discount/internal/obs"
	"github.com/noah-isme/volume-discount/internal/rule"
)

// blobStore is the persistence surface the service needs.
type blobStore interface {
	Get(ctx context.Context, shopDomain string) (string, bool, error)
	Upsert(ctx context.Context, shopDomain, value string) error
}

// Service resolves and saves the shop rule blob, keeping the Redis cache
// coherent around writes. Evaluators only ever call Raw; writes come from the
// admin surface.
type Service struct {
	Store  blobStore
	Cache  *Cache
	Logger zerolog.Logger
}

// Raw returns the stored blob for the shop: cache first, then the store with
// a cache backfill. A cache failure degrades to a store read, never an error.
func (s *Service) Raw(ctx context.Context, shopDomain string) (string, bool, error) {
	if s == nil || s.Store == nil {
		return "", false, errors.New("shopconfig service not configured")
	}
	if value, ok, err := s.Cache.Get(ctx, shopDomain); err != nil {
		s.Logger.Warn().Err(err).Str("shop", shopDomain).Msg("config cache read")
	} else if ok {
		obs.IncConfigFetch("cache")
		return value, true, nil
	}

	value, ok, err := s.Store.Get(ctx, shopDomain)
	if err != nil {
		return "", false, err
	}
	if !ok {
		obs.IncConfigFetch("miss")
		return "", false, nil
	}
	obs.IncConfigFetch("db")
	if err := s.Cache.Set(ctx, shopDomain, value); err != nil {
		s.Logger.Warn().Err(err).Str("shop", shopDomain).Msg("config cache backfill")
	}
	return value, true, nil
}

// Save persists a validated rule for the shop and invalidates the cache.
func (s *Service) Save(ctx context.Context, shopDomain string, cfg rule.Config) error {
	if s == nil || s.Store == nil {
		return errors.New("shopconfig service not configured")
	}
	blob, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := s.Store.Upsert(ctx, shopDomain, string(blob)); err != nil {
		return err
	}
	if err := s.Cache.Delete(ctx, shopDomain); err != nil {
		s.Logger.Warn().Err(err).Str("shop", shopDomain).Msg("config cache invalidate")
	}
	return nil
}
