// internal/storage/redis_test.go
package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redismock "github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisKV(t *testing.T) *Redis {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisFromClient(client)
}

func TestRedis_RoundTrip(t *testing.T) {
	kv := newMiniredisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))
	require.NoError(t, kv.Set(ctx, "store:cart", []byte(`{"items":[]}`)))

	got, err := kv.Get(ctx, "store:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"items":[]}`), got)

	require.NoError(t, kv.Delete(ctx, "store:cart"))
	_, err = kv.Get(ctx, "store:cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedis_MissingKeyMapsToErrKeyNotFound(t *testing.T) {
	kv := newMiniredisKV(t)

	_, err := kv.Get(context.Background(), "store:never-written")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedis_SetFailurePropagates(t *testing.T) {
	client, mock := redismock.NewClientMock()
	kv := NewRedisFromClient(client)

	mock.ExpectSet("store:filters", []byte("x"), 0).SetErr(errors.New("connection reset"))

	err := kv.Set(context.Background(), "store:filters", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
