package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storygraph/pkg/adapters/redis"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunUnitStoreContract(t, store)
}

func TestRedisStore_Keys(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "intro", "events: []\n"))

	val, err := mr.Get("test:unit:intro")
	require.NoError(t, err)
	assert.Equal(t, "events: []\n", val)

	members, err := mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro"}, members)

	require.NoError(t, store.Rename(ctx, "intro", "prologue"))
	assert.False(t, mr.Exists("test:unit:intro"))
	members, err = mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"prologue"}, members)
}

func TestRedisStore_UnitNamedIndex(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "index", "x"))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index"}, ids)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	store := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()
	mr.Close()

	_, err = store.Read(context.Background(), "intro")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnitNotFound)
	assert.Error(t, store.Ping(context.Background()))
}
