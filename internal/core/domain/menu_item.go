package domain

import "fmt"

type MenuItem struct {
	ID          string
	Name        string
	Description string
	Type        string
	Price       Money
	Stock       int
}

func NewMenuItem(id, name, description string, price Money, itemType string, stock int) *MenuItem {
	return &MenuItem{
		ID:          id,
		Name:        name,
		Description: description,
		Type:        itemType,
		Price:       price,
		Stock:       stock,
	}
}

func (m *MenuItem) InStock() bool {
	return m.Stock > 0
}

// TakeOne removes a single unit from stock.
func (m *MenuItem) TakeOne() error {
	if !m.InStock() {
		return ErrItemOutOfStock
	}
	m.Stock--
	return nil
}

func (m MenuItem) String() string {
	return fmt.Sprintf("MenuItem{name='%s', description='%s', price=%s, id='%s', amountAvailable=%d, type='%s'}",
		m.Name, m.Description, formatMoney(m.Price), m.ID, m.Stock, m.Type)
}
