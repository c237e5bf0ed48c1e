package mykv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestStorage(t *testing.T) {
	c := context.TODO()

	mr := miniredis.RunT(t)
	redisStorage, cleanup, err := NewRedisStorage(c, mr.Addr(), time.Hour)
	assert.NoError(t, err)
	defer cleanup()

	for name, storage := range map[string]Storage{
		"in-memory": NewInMemoryStorage(),
		"redis":     redisStorage,
	} {
		t.Run(name, func(t *testing.T) {
			t.Run("Get missing key", func(t *testing.T) {
				_, found, err := storage.Get(c, "cart:missing")
				assert.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("Put and get", func(t *testing.T) {
				assert.NoError(t, storage.Put(c, "cart:123", `[{"productUID":"p1"}]`))

				value, found, err := storage.Get(c, "cart:123")
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, `[{"productUID":"p1"}]`, value)
			})

			t.Run("Overwrite", func(t *testing.T) {
				assert.NoError(t, storage.Put(c, "cart:123", `[]`))

				value, _, err := storage.Get(c, "cart:123")
				assert.NoError(t, err)
				assert.Equal(t, `[]`, value)
			})

			t.Run("Delete", func(t *testing.T) {
				assert.NoError(t, storage.Delete(c, "cart:123"))
				assert.NoError(t, storage.Delete(c, "cart:123"))

				_, found, err := storage.Get(c, "cart:123")
				assert.NoError(t, err)
				assert.False(t, found)
			})
		})
	}

	t.Run("Redis entries expire", func(t *testing.T) {
		assert.NoError(t, redisStorage.Put(c, "cart:ttl", `[]`))

		mr.FastForward(2 * time.Hour)

		_, found, err := redisStorage.Get(c, "cart:ttl")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Redis unreachable", func(t *testing.T) {
		_, _, err := NewRedisStorage(c, "127.0.0.1:1", time.Hour)
		assert.Error(t, err)
	})
}
