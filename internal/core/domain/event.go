package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventUserCreated   EventKind = "user_created"
	EventMenuItemAdded EventKind = "menu_item_added"
	EventOrderPlaced   EventKind = "order_placed"
	EventOrderDeleted  EventKind = "order_deleted"
)

// Event records a committed state change. Balance and Stock hold the values left
// after the change for the user and item it touched.
type Event struct {
	ID         string    `json:"event_id"`
	Kind       EventKind `json:"kind"`
	UserID     string    `json:"user_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	OrderType  OrderType `json:"order_type,omitempty"`
	Amount     Money     `json:"amount"`
	Balance    Money     `json:"balance"`
	Stock      int       `json:"stock"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(kind EventKind) Event {
	return Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

func UserCreated(u User) Event {
	e := newEvent(EventUserCreated)
	e.UserID = u.ID
	e.Balance = u.Balance
	return e
}

func MenuItemAdded(m MenuItem) Event {
	e := newEvent(EventMenuItemAdded)
	e.ItemID = m.ID
	e.Amount = m.Price
	e.Stock = m.Stock
	return e
}

func OrderPlaced(r Receipt) Event {
	e := newEvent(EventOrderPlaced)
	e.UserID = r.UserID
	e.ItemID = r.Order.ItemID
	e.OrderID = r.Order.ID
	e.OrderType = r.Order.Type
	e.Amount = r.Price
	e.Balance = r.Balance
	e.Stock = r.Stock
	return e
}

func OrderDeleted(userID string, o Order) Event {
	e := newEvent(EventOrderDeleted)
	e.UserID = userID
	e.ItemID = o.ItemID
	e.OrderID = o.ID
	e.OrderType = o.Type
	return e
}
