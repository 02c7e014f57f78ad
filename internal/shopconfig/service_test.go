package shopconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volume-discount/internal/rule"
)

type fakeStore struct {
	values map[string]string
	gets   int
	err    error
}

func (f *fakeStore) Get(_ context.Context, shop string) (string, bool, error) {
	f.gets++
	if f.err != nil {
		return "", false, f.err
	}
	value, ok := f.values[shop]
	return value, ok, nil
}

func (f *fakeStore) Upsert(_ context.Context, shop, value string) error {
	if f.err != nil {
		return f.err
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[shop] = value
	return nil
}

func TestRawCacheBackfill(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{values: map[string]string{"demo": `{"percentOff":20}`}}
	svc := &Service{Store: store, Cache: newTestCache(t), Logger: zerolog.Nop()}

	value, ok, err := svc.Raw(ctx, "demo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"percentOff":20}`, value)
	require.Equal(t, 1, store.gets)

	// Second read is served from the cache.
	value, ok, err = svc.Raw(ctx, "demo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"percentOff":20}`, value)
	require.Equal(t, 1, store.gets)
}

func TestRawMiss(t *testing.T) {
	svc := &Service{Store: &fakeStore{}, Logger: zerolog.Nop()}
	_, ok, err := svc.Raw(context.Background(), "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRawStoreError(t *testing.T) {
	svc := &Service{Store: &fakeStore{err: errors.New("down")}, Logger: zerolog.Nop()}
	_, _, err := svc.Raw(context.Background(), "demo")
	require.Error(t, err)
}

func TestSaveInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{values: map[string]string{"demo": `{"percentOff":5}`}}
	cache := newTestCache(t)
	svc := &Service{Store: store, Cache: cache, Logger: zerolog.Nop()}

	// Warm the cache.
	_, _, err := svc.Raw(ctx, "demo")
	require.NoError(t, err)

	cfg := rule.Config{Products: []string{"gid://shopify/Product/1"}, MinQty: 3, PercentOff: 25}
	require.NoError(t, svc.Save(ctx, "demo", cfg))

	value, ok, err := svc.Raw(ctx, "demo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, value, `"percentOff":25`)

	decoded, valid := rule.Decode(value)
	require.True(t, valid)
	require.Equal(t, cfg, decoded)
}
