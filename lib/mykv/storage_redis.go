package mykv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(c context.Context, addr string, ttl time.Duration) (*redisStorage, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis on %s: %s", addr, err)
	}

	return &redisStorage{
			client: client,
			ttl:    ttl,
		}, func() {
			client.Close()
		}, nil
}

func (s *redisStorage) Get(c context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error getting key %s: %s", key, err)
	}
	return value, true, nil
}

func (s *redisStorage) Put(c context.Context, key string, value string) error {
	err := s.client.Set(c, key, value, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("error setting key %s: %s", key, err)
	}
	return nil
}

func (s *redisStorage) Delete(c context.Context, key string) error {
	err := s.client.Del(c, key).Err()
	if err != nil {
		return fmt.Errorf("error deleting key %s: %s", key, err)
	}
	return nil
}
