package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

const createOrderEventsTable = `
CREATE TABLE IF NOT EXISTS order_events (
	id            CHAR(36)       NOT NULL PRIMARY KEY,
	kind          VARCHAR(32)    NOT NULL,
	user_id       VARCHAR(255)   NOT NULL DEFAULT '',
	item_id       VARCHAR(255)   NOT NULL DEFAULT '',
	order_id      VARCHAR(255)   NOT NULL DEFAULT '',
	order_type    VARCHAR(64)    NOT NULL DEFAULT '',
	amount        DECIMAL(12, 2) NOT NULL DEFAULT 0,
	balance       DECIMAL(12, 2) NOT NULL DEFAULT 0,
	stock         INT            NOT NULL DEFAULT 0,
	occurred_at   DATETIME(6)    NOT NULL,
	INDEX idx_order_events_user (user_id),
	INDEX idx_order_events_order (order_id)
)`

// MySQLAdapter appends journal events to the order_events ledger table.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createOrderEventsTable); err != nil {
		return fmt.Errorf("create order_events: %w", err)
	}
	return nil
}

// Record inserts the event. Replaying an event id is a no-op.
func (m *MySQLAdapter) Record(ctx context.Context, event domain.Event) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO order_events
			(id, kind, user_id, item_id, order_id, order_type, amount, balance, stock, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Kind), event.UserID, event.ItemID, event.OrderID, string(event.OrderType),
		event.Amount.StringFixed(2), event.Balance.StringFixed(2), event.Stock, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// OrderHistory returns the events for one order, oldest first.
func (m *MySQLAdapter) OrderHistory(ctx context.Context, orderID string) ([]domain.Event, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, kind, user_id, item_id, order_id, order_type, amount, balance, stock, occurred_at
		FROM order_events WHERE order_id = ? ORDER BY occurred_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			kind      string
			orderType string
		)
		if err := rows.Scan(&e.ID, &kind, &e.UserID, &e.ItemID, &e.OrderID, &orderType,
			&e.Amount, &e.Balance, &e.Stock, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		e.OrderType = domain.OrderType(orderType)
		events = append(events, e)
	}
	return events, rows.Err()
}
