package domain

import (
	"fmt"
	"strings"
)

type User struct {
	ID        string
	Name      string
	YearLevel string
	Balance   Money
	Orders    []Order
}

func NewUser(id, name, yearLevel string, balance Money) *User {
	return &User{
		ID:        id,
		Name:      name,
		YearLevel: yearLevel,
		Balance:   balance,
	}
}

// CanAfford reports whether paying price leaves a non-negative balance.
func (u *User) CanAfford(price Money) bool {
	return !u.Balance.Sub(price).IsNegative()
}

func (u *User) Debit(price Money) error {
	if !u.CanAfford(price) {
		return ErrFundsInsufficient
	}
	u.Balance = u.Balance.Sub(price)
	return nil
}

func (u *User) AddOrder(o Order) {
	u.Orders = append(u.Orders, o)
}

// RemoveOrder drops the order with the given id and reports whether it was owned.
func (u *User) RemoveOrder(orderID string) bool {
	for i, o := range u.Orders {
		if o.ID == orderID {
			u.Orders = append(u.Orders[:i], u.Orders[i+1:]...)
			return true
		}
	}
	return false
}

func (u *User) Owns(orderID string) bool {
	for _, o := range u.Orders {
		if o.ID == orderID {
			return true
		}
	}
	return false
}

// Snapshot returns a copy that shares no memory with u.
func (u *User) Snapshot() User {
	c := *u
	c.Orders = append([]Order(nil), u.Orders...)
	return c
}

func (u User) String() string {
	orders := make([]string, 0, len(u.Orders))
	for _, o := range u.Orders {
		orders = append(orders, o.String())
	}
	return fmt.Sprintf("User{userID='%s', name='%s', yearLevel='%s', orders=%s, money=%s}",
		u.ID, u.Name, u.YearLevel, strings.Join(orders, ", "), formatMoney(u.Balance))
}
