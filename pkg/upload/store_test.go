package upload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphypad/pkg/cache"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("d.csv",
		&dataset.Column{Name: "a", Values: []dataset.Value{dataset.Num(1), dataset.NA}},
		&dataset.Column{Name: "b", Values: []dataset.Value{dataset.Str("x"), dataset.Str("y")}},
	)
	require.NoError(t, err)
	return ds
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(cache.NewMemoryCache(0))

	id, err := s.Put(ctx, sample(t))
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Names())
	assert.Equal(t, "d.csv", got.Name)
	col, _ := got.Column("a")
	assert.True(t, col.Values[1].IsNA())

	other, err := s.Put(ctx, sample(t))
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore(cache.NewMemoryCache(0))

	for _, id := range []string{"", "not-a-uuid", "6f1c1a2e-0000-4000-8000-000000000000"} {
		_, err := s.Get(ctx, id)
		assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "Get(%q) = %v", id, err)
		assert.True(t, errors.IsNotFound(err))
	}

	err := s.Replace(ctx, "6f1c1a2e-0000-4000-8000-000000000000", sample(t))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestStoreReplaceDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore(cache.NewMemoryCache(0))

	id, err := s.Put(ctx, sample(t))
	require.NoError(t, err)

	derived, err := dataset.Derive(sample(t), "a", "", 10)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, id, derived))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a_calc"}, got.Names())
	require.Len(t, got.Derivations, 1)
	assert.Equal(t, 10.0, got.Derivations[0].Factor)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
	assert.NoError(t, s.Delete(ctx, id))
	assert.NoError(t, s.Delete(ctx, "junk"))
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewStore(cache.NewMemoryCache(0), WithTTL(20*time.Millisecond))

	id, err := s.Put(ctx, sample(t))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	_, err = s.Get(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestStoreKeyer(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)
	s := NewStore(c, WithKeyer(cache.NewScopedKeyer(nil, "t:")))

	id, err := s.Put(ctx, sample(t))
	require.NoError(t, err)
	_, ok, err := c.Get(ctx, "t:upload:"+id)
	require.NoError(t, err)
	assert.True(t, ok)
}
