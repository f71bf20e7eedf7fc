package port

import "github.com/rl1809/campus-canteen/internal/core/domain"

type EntityStore interface {
	// CreateUser registers a user with the starting balance, fails if the id is taken
	CreateUser(id, name, yearLevel string) (domain.User, error)

	// CreateMenuItem registers an item with the default stock, fails if the id is taken
	CreateMenuItem(id, name, description string, price domain.Money, itemType string) (domain.MenuItem, error)

	GetUser(id string) (domain.User, error)
	GetMenuItem(id string) (domain.MenuItem, error)
	GetOrder(id string) (domain.Order, error)

	// PlaceOrder charges the user and takes one unit of stock, all or nothing
	PlaceOrder(userID, itemID, orderID string, orderType domain.OrderType) (domain.Receipt, error)

	// DeleteOrder removes an order owned by the user without restock or refund
	DeleteOrder(userID, orderID string) (domain.Order, error)
}
