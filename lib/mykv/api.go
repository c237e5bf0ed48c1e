package mykv

import (
	"context"
	"time"
)

//go:generate mockgen -source=api.go -package mykv -destination storage_mock.go Storage
type Storage interface {
	Get(c context.Context, key string) (string, bool, error)
	Put(c context.Context, key string, value string) error
	Delete(c context.Context, key string) error
}

// New returns a redis backed storage when an address is given, an in-memory one otherwise
func New(c context.Context, redisAddr string, ttl time.Duration) (Storage, func(), error) {
	if redisAddr != "" {
		return NewRedisStorage(c, redisAddr, ttl)
	}
	return NewInMemoryStorage(), func() {}, nil
}
