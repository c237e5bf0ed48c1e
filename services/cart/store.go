package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/storefront/lib/mykv"
	"github.com/MarcGrol/storefront/lib/mylog"
)

type Listener func(c context.Context, sessionUID string, cart Cart)

// Store owns the carts of all sessions: every mutation is persisted before listeners are notified
type Store struct {
	sync.Mutex
	storage mykv.Storage
	logger  mylog.Logger

	listenerLock   sync.Mutex
	listeners      map[int]Listener
	nextListenerID int
}

func NewStore(storage mykv.Storage) *Store {
	return &Store{
		storage:   storage,
		logger:    mylog.New("cart"),
		listeners: map[int]Listener{},
	}
}

func storageKey(sessionUID string) string {
	return "cart:" + sessionUID
}

func (s *Store) Get(c context.Context, sessionUID string) (Cart, error) {
	s.Lock()
	defer s.Unlock()

	return s.load(c, sessionUID)
}

func (s *Store) AddItem(c context.Context, sessionUID string, product Product, size string, color string, quantity int) (Cart, error) {
	return s.mutate(c, sessionUID, func(cart *Cart) {
		cart.AddItem(product, size, color, quantity)
	})
}

func (s *Store) RemoveItem(c context.Context, sessionUID string, productUID string, size string, color string) (Cart, error) {
	return s.mutate(c, sessionUID, func(cart *Cart) {
		cart.RemoveItem(productUID, size, color)
	})
}

func (s *Store) UpdateQuantity(c context.Context, sessionUID string, productUID string, quantity int, size string, color string) (Cart, error) {
	return s.mutate(c, sessionUID, func(cart *Cart) {
		cart.UpdateQuantity(productUID, quantity, size, color)
	})
}

func (s *Store) Clear(c context.Context, sessionUID string) (Cart, error) {
	return s.mutate(c, sessionUID, func(cart *Cart) {
		cart.Clear()
	})
}

// Subscribe registers a listener that is called after every successful mutation
func (s *Store) Subscribe(listener Listener) func() {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = listener

	return func() {
		s.listenerLock.Lock()
		defer s.listenerLock.Unlock()

		delete(s.listeners, id)
	}
}

func (s *Store) mutate(c context.Context, sessionUID string, mutation func(cart *Cart)) (Cart, error) {
	s.Lock()
	cart, err := s.load(c, sessionUID)
	if err != nil {
		s.Unlock()
		return Cart{}, err
	}

	mutation(&cart)

	err = s.save(c, sessionUID, cart)
	s.Unlock()
	if err != nil {
		return Cart{}, err
	}

	s.notify(c, sessionUID, cart)

	return cart, nil
}

func (s *Store) load(c context.Context, sessionUID string) (Cart, error) {
	data, found, err := s.storage.Get(c, storageKey(sessionUID))
	if err != nil {
		return Cart{}, fmt.Errorf("error fetching cart of session %s: %s", sessionUID, err)
	}
	if !found {
		return Cart{}, nil
	}

	cart, err := Deserialize(data)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Ignoring malformed cart of session %s: %s", sessionUID, err)
		return Cart{}, nil
	}

	return cart, nil
}

func (s *Store) save(c context.Context, sessionUID string, cart Cart) error {
	data, err := Serialize(cart)
	if err != nil {
		return err
	}

	err = s.storage.Put(c, storageKey(sessionUID), data)
	if err != nil {
		return fmt.Errorf("error storing cart of session %s: %s", sessionUID, err)
	}

	return nil
}

func (s *Store) notify(c context.Context, sessionUID string, cart Cart) {
	s.listenerLock.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenerLock.Unlock()

	for _, l := range listeners {
		l(c, sessionUID, cart.Clone())
	}
}
