package storage

import (
	"sync"

	"github.com/rl1809/campus-canteen/internal/core/domain"
	"github.com/rl1809/campus-canteen/internal/port"
)

// MemoryStore keeps users, menu items and orders in process memory. A single mutex
// guards all three maps so composite operations are atomic.
//
// Events are published before the mutex is released, so the publisher sees them in
// commit order. The publisher must not block.
type MemoryStore struct {
	mu              sync.Mutex
	users           map[string]*domain.User
	items           map[string]*domain.MenuItem
	orders          map[string]domain.Order
	startingBalance domain.Money
	defaultStock    int
	events          port.EventPublisher
}

// NewMemoryStore creates an empty store. events may be nil.
func NewMemoryStore(startingBalance domain.Money, defaultStock int, events port.EventPublisher) *MemoryStore {
	if events == nil {
		events = discardEvents{}
	}
	return &MemoryStore{
		users:           make(map[string]*domain.User),
		items:           make(map[string]*domain.MenuItem),
		orders:          make(map[string]domain.Order),
		startingBalance: startingBalance,
		defaultStock:    defaultStock,
		events:          events,
	}
}

type discardEvents struct{}

func (discardEvents) Publish(domain.Event) {}

func (s *MemoryStore) CreateUser(id, name, yearLevel string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; ok {
		return domain.User{}, domain.ErrUserExists
	}

	user := domain.NewUser(id, name, yearLevel, s.startingBalance)
	s.users[id] = user

	snapshot := user.Snapshot()
	s.events.Publish(domain.UserCreated(snapshot))
	return snapshot, nil
}

func (s *MemoryStore) CreateMenuItem(id, name, description string, price domain.Money, itemType string) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; ok {
		return domain.MenuItem{}, domain.ErrMenuItemExists
	}

	item := domain.NewMenuItem(id, name, description, price, itemType, s.defaultStock)
	s.items[id] = item

	s.events.Publish(domain.MenuItemAdded(*item))
	return *item, nil
}

func (s *MemoryStore) GetUser(id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user.Snapshot(), nil
}

func (s *MemoryStore) GetMenuItem(id string) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return *item, nil
}

func (s *MemoryStore) GetOrder(id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// PlaceOrder runs every check before touching state. Check order decides which error
// a caller sees: user, item, duplicate order, funds, stock.
func (s *MemoryStore) PlaceOrder(userID, itemID, orderID string, orderType domain.OrderType) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Receipt{}, domain.ErrUserNotFound
	}
	item, ok := s.items[itemID]
	if !ok {
		return domain.Receipt{}, domain.ErrMenuItemNotFound
	}
	if _, ok := s.orders[orderID]; ok {
		return domain.Receipt{}, domain.ErrDuplicateOrder
	}
	if !user.CanAfford(item.Price) {
		return domain.Receipt{}, domain.ErrFundsInsufficient
	}
	if !item.InStock() {
		return domain.Receipt{}, domain.ErrItemOutOfStock
	}

	if err := item.TakeOne(); err != nil {
		return domain.Receipt{}, err
	}
	order := domain.NewOrder(orderID, itemID, orderType)
	s.orders[orderID] = order
	user.AddOrder(order)
	if err := user.Debit(item.Price); err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		Order:   order,
		UserID:  user.ID,
		Price:   item.Price,
		Balance: user.Balance,
		Stock:   item.Stock,
	}
	s.events.Publish(domain.OrderPlaced(receipt))
	return receipt, nil
}

func (s *MemoryStore) DeleteOrder(userID, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Order{}, domain.ErrUserNotFound
	}
	order, ok := s.orders[orderID]
	if !ok || !user.Owns(orderID) {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	user.RemoveOrder(orderID)
	delete(s.orders, orderID)

	s.events.Publish(domain.OrderDeleted(userID, order))
	return order, nil
}
