package domain

import "fmt"

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// Order references a single menu item. The owning user keeps the order in its list.
type Order struct {
	ID     string
	ItemID string
	Type   OrderType
}

func NewOrder(id, itemID string, orderType OrderType) Order {
	return Order{ID: id, ItemID: itemID, Type: orderType}
}

func (o Order) String() string {
	return fmt.Sprintf("Order{itemID='%s', type='%s', orderID='%s'}", o.ItemID, o.Type, o.ID)
}

// Receipt is the outcome of a successful placement.
type Receipt struct {
	Order   Order
	UserID  string
	Price   Money
	Balance Money
	Stock   int
}
