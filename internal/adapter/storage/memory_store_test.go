package storage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(domain.DefaultStartingBalance, domain.DefaultStock, nil)
}

// Mock EventPublisher
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event

	// onPublish runs inside Publish, before the event is recorded
	onPublish func(domain.Event)
}

func (r *recordingPublisher) Publish(e domain.Event) {
	if r.onPublish != nil {
		r.onPublish(e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func mustSeed(t *testing.T, s *MemoryStore, userID, itemID, price string) {
	t.Helper()
	if _, err := s.CreateUser(userID, "Ann", "10"); err != nil {
		t.Fatalf("setup user failed: %v", err)
	}
	if _, err := s.CreateMenuItem(itemID, "Burger", "beef", decimal.RequireFromString(price), "main"); err != nil {
		t.Fatalf("setup item failed: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"u1", "u2", "u3"} {
		if _, err := s.CreateUser(id, "name-"+id, "11"); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", id, err)
		}
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		u, err := s.GetUser(id)
		if err != nil {
			t.Fatalf("GetUser(%s) failed: %v", id, err)
		}
		if !u.Balance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected starting balance 50, got %s", u.Balance)
		}
	}

	_, err := s.CreateUser("u1", "other", "12")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got: %v", err)
	}
}

func TestCreateMenuItem_Duplicate(t *testing.T) {
	s := newTestStore(t)

	item, err := s.CreateMenuItem("i1", "Burger", "beef", decimal.RequireFromString("12.5"), "main")
	if err != nil {
		t.Fatalf("CreateMenuItem failed: %v", err)
	}
	if item.Stock != domain.DefaultStock {
		t.Errorf("expected stock %d, got %d", domain.DefaultStock, item.Stock)
	}

	_, err = s.CreateMenuItem("i1", "Pizza", "cheese", decimal.NewFromInt(3), "main")
	if !errors.Is(err, domain.ErrMenuItemExists) {
		t.Errorf("expected ErrMenuItemExists, got: %v", err)
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	mustSeed(t, s, "x", "x", "1")

	if _, err := s.PlaceOrder("x", "x", "x", domain.OrderTypePickup); err != nil {
		t.Fatalf("PlaceOrder with shared ids failed: %v", err)
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	s := newTestStore(t)
	mustSeed(t, s, "u1", "i1", "12.5")

	receipt, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypePickup)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if receipt.Stock != 9 || !receipt.Balance.Equal(decimal.RequireFromString("37.5")) {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	user, _ := s.GetUser("u1")
	if len(user.Orders) != 1 || user.Orders[0].ID != "o1" {
		t.Errorf("expected one order o1, got %v", user.Orders)
	}
	item, _ := s.GetMenuItem("i1")
	if item.Stock != 9 {
		t.Errorf("expected stock 9, got %d", item.Stock)
	}
	order, err := s.GetOrder("o1")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.ItemID != "i1" || order.Type != domain.OrderTypePickup {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestPlaceOrder_ExactBalance(t *testing.T) {
	s := newTestStore(t)
	mustSeed(t, s, "u1", "i1", "50")

	if _, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypePickup); err != nil {
		t.Fatalf("spending the whole balance should succeed: %v", err)
	}
	user, _ := s.GetUser("u1")
	if !user.Balance.IsZero() {
		t.Errorf("expected zero balance, got %s", user.Balance)
	}

	_, err := s.PlaceOrder("u1", "i1", "o2", domain.OrderTypePickup)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got: %v", err)
	}
}

func TestPlaceOrder_ErrorPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		itemID  string
		orderID string
		want    error
	}{
		{"missing user wins over missing item", "nobody", "nothing", "o9", domain.ErrUserNotFound},
		{"missing item wins over duplicate order", "u1", "nothing", "taken", domain.ErrMenuItemNotFound},
		{"duplicate order wins over funds", "broke", "pricey", "taken", domain.ErrDuplicateOrder},
		{"funds win over stock", "broke", "pricey", "o9", domain.ErrFundsInsufficient},
		{"stock", "u1", "pricey", "o9", domain.ErrItemOutOfStock},
	}

	s := NewMemoryStore(decimal.NewFromInt(50), 1, nil)
	mustSeed(t, s, "u1", "pricey", "5")
	if _, err := s.CreateUser("broke", "Bob", "12"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlaceOrder("u1", "pricey", "taken", domain.OrderTypePickup); err != nil {
		t.Fatalf("setup order failed: %v", err)
	}
	// broke has nothing left to spend
	s.users["broke"].Balance = decimal.Zero

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.PlaceOrder(tt.userID, tt.itemID, tt.orderID, domain.OrderTypePickup)
			if err != tt.want {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlaceOrder_FailureLeavesStateUnchanged(t *testing.T) {
	s := NewMemoryStore(decimal.NewFromInt(10), 1, nil)
	mustSeed(t, s, "u1", "cheap", "1")
	if _, err := s.CreateMenuItem("dear", "Steak", "", decimal.NewFromInt(20), "main"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.PlaceOrder("u1", "dear", "o1", domain.OrderTypePickup); err == nil {
		t.Fatal("expected insufficient funds")
	}
	if _, err := s.PlaceOrder("u1", "cheap", "o2", domain.OrderTypePickup); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlaceOrder("u1", "cheap", "o3", domain.OrderTypePickup); !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}

	user, _ := s.GetUser("u1")
	if !user.Balance.Equal(decimal.NewFromInt(9)) {
		t.Errorf("expected balance 9, got %s", user.Balance)
	}
	if len(user.Orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(user.Orders))
	}
	dear, _ := s.GetMenuItem("dear")
	if dear.Stock != 1 {
		t.Errorf("failed order touched stock: %d", dear.Stock)
	}
	for _, id := range []string{"o1", "o3"} {
		if _, err := s.GetOrder(id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("failed order %s was stored", id)
		}
	}
}

func TestDeleteOrder_NoCompensation(t *testing.T) {
	s := newTestStore(t)
	mustSeed(t, s, "u1", "i1", "12.5")
	if _, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypeDelivery); err != nil {
		t.Fatal(err)
	}

	order, err := s.DeleteOrder("u1", "o1")
	if err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	if order.ID != "o1" {
		t.Errorf("expected deleted order o1, got %s", order.ID)
	}

	user, _ := s.GetUser("u1")
	if len(user.Orders) != 0 {
		t.Errorf("order still listed on user: %v", user.Orders)
	}
	if !user.Balance.Equal(decimal.RequireFromString("37.5")) {
		t.Errorf("balance changed on delete: %s", user.Balance)
	}
	item, _ := s.GetMenuItem("i1")
	if item.Stock != 9 {
		t.Errorf("stock changed on delete: %d", item.Stock)
	}
	if _, err := s.GetOrder("o1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("order still in global map: %v", err)
	}

	_, err = s.DeleteOrder("u1", "o1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOrder_NotOwned(t *testing.T) {
	s := newTestStore(t)
	mustSeed(t, s, "u1", "i1", "1")
	if _, err := s.CreateUser("u2", "Bob", "12"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypePickup); err != nil {
		t.Fatal(err)
	}

	if _, err := s.DeleteOrder("u2", "o1"); err != domain.ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := s.DeleteOrder("ghost", "o1"); err != domain.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetOrder("o1"); err != nil {
		t.Errorf("order should survive a foreign delete: %v", err)
	}
}

func TestGetters_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUser("u"); err != domain.ErrUserNotFound {
		t.Errorf("GetUser: %v", err)
	}
	if _, err := s.GetMenuItem("i"); err != domain.ErrItemNotFound {
		t.Errorf("GetMenuItem: %v", err)
	}
	if _, err := s.GetOrder("o"); err != domain.ErrOrderNotFound {
		t.Errorf("GetOrder: %v", err)
	}
}

func TestPlaceOrder_ConcurrentStock(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateMenuItem("hot", "Dumplings", "", decimal.NewFromInt(1), "snack"); err != nil {
		t.Fatal(err)
	}

	totalRequests := 50
	for i := 0; i < totalRequests; i++ {
		if _, err := s.CreateUser(fmt.Sprintf("user-%d", i), "n", "y"); err != nil {
			t.Fatal(err)
		}
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := s.PlaceOrder(fmt.Sprintf("user-%d", id), "hot", fmt.Sprintf("order-%d", id), domain.OrderTypePickup)
			if err == nil {
				successCount.Add(1)
			} else if !errors.Is(err, domain.ErrOutOfStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != int32(domain.DefaultStock) {
		t.Errorf("expected %d successes, got %d", domain.DefaultStock, successCount.Load())
	}
	item, _ := s.GetMenuItem("hot")
	if item.Stock != 0 {
		t.Errorf("expected stock 0, got %d", item.Stock)
	}
}

func TestPlaceOrder_ConcurrentBalance(t *testing.T) {
	s := NewMemoryStore(decimal.NewFromInt(10), 100, nil)
	mustSeed(t, s, "u1", "i1", "3")

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := s.PlaceOrder("u1", "i1", fmt.Sprintf("o-%d", id), domain.OrderTypePickup); err == nil {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 3 {
		t.Errorf("expected 3 successes, got %d", successCount.Load())
	}
	user, _ := s.GetUser("u1")
	if !user.Balance.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected balance 1, got %s", user.Balance)
	}
	if user.Balance.IsNegative() {
		t.Error("balance went negative")
	}
}

func TestEvents_PublishedOnCommitOnly(t *testing.T) {
	events := &recordingPublisher{}
	s := NewMemoryStore(decimal.NewFromInt(5), 1, events)
	mustSeed(t, s, "u1", "i1", "5")

	s.CreateUser("u1", "dup", "10")
	s.PlaceOrder("u1", "missing", "o1", domain.OrderTypePickup)
	if _, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypePickup); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	s.PlaceOrder("u1", "i1", "o2", domain.OrderTypePickup)
	s.DeleteOrder("u1", "o2")
	if _, err := s.DeleteOrder("u1", "o1"); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}

	want := []domain.EventKind{
		domain.EventUserCreated, domain.EventMenuItemAdded,
		domain.EventOrderPlaced, domain.EventOrderDeleted,
	}
	got := events.kinds()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}

	placed := events.events[2]
	if placed.OrderID != "o1" || placed.Stock != 0 || !placed.Balance.IsZero() {
		t.Errorf("unexpected order_placed event: %+v", placed)
	}
}

func TestEvents_FollowCommitOrder(t *testing.T) {
	placedSeen := make(chan struct{})
	events := &recordingPublisher{}
	events.onPublish = func(e domain.Event) {
		if e.Kind == domain.EventOrderPlaced {
			close(placedSeen)
			// Hold the publish open so a racing delete has every chance to overtake it
			time.Sleep(50 * time.Millisecond)
		}
	}

	s := NewMemoryStore(domain.DefaultStartingBalance, domain.DefaultStock, events)
	mustSeed(t, s, "u1", "i1", "2.5")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.PlaceOrder("u1", "i1", "o1", domain.OrderTypeDelivery); err != nil {
			t.Errorf("PlaceOrder failed: %v", err)
		}
	}()

	<-placedSeen
	if _, err := s.DeleteOrder("u1", "o1"); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	wg.Wait()

	got := events.kinds()
	want := []domain.EventKind{
		domain.EventUserCreated, domain.EventMenuItemAdded,
		domain.EventOrderPlaced, domain.EventOrderDeleted,
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("events out of commit order: got %v, want %v", got, want)
	}
}
