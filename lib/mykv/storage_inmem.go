package mykv

import (
	"context"
	"sync"
)

type inMemoryStorage struct {
	sync.Mutex
	items map[string]string
}

func NewInMemoryStorage() *inMemoryStorage {
	return &inMemoryStorage{
		items: map[string]string{},
	}
}

func (s *inMemoryStorage) Get(c context.Context, key string) (string, bool, error) {
	s.Lock()
	defer s.Unlock()

	value, found := s.items[key]
	return value, found, nil
}

func (s *inMemoryStorage) Put(c context.Context, key string, value string) error {
	s.Lock()
	defer s.Unlock()

	s.items[key] = value
	return nil
}

func (s *inMemoryStorage) Delete(c context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.items, key)
	return nil
}
