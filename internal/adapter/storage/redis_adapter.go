package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

const (
	stockKeyPrefix      = "stock:"
	balanceKeyPrefix    = "balance:"
	userOrdersKeyPrefix = "orders:"
)

// Stock and balance only ever go down, so the mirror keeps the lowest value it has
// seen and ignores events that arrive late.
var lowerScript = redis.NewScript(`
local key = KEYS[1]
local value = tonumber(ARGV[1])

local current = redis.call('GET', key)
if current and tonumber(current) <= value then
	return 0
end

redis.call('SET', key, ARGV[1])
return 1
`)

// RedisAdapter mirrors stock, balances and per-user order sets for read-only consumers.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Record(ctx context.Context, event domain.Event) error {
	switch event.Kind {
	case domain.EventUserCreated:
		return r.lower(ctx, balanceKeyPrefix+event.UserID, event.Balance.String())

	case domain.EventMenuItemAdded:
		return r.lower(ctx, stockKeyPrefix+event.ItemID, fmt.Sprint(event.Stock))

	case domain.EventOrderPlaced:
		// EVALSHA cannot fall back to EVAL inside a transaction, so send the full script
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			lowerScript.Eval(ctx, pipe, []string{stockKeyPrefix + event.ItemID}, event.Stock)
			lowerScript.Eval(ctx, pipe, []string{balanceKeyPrefix + event.UserID}, event.Balance.String())
			pipe.SAdd(ctx, userOrdersKeyPrefix+event.UserID, event.OrderID)
			return nil
		})
		if err != nil {
			return fmt.Errorf("mirror order placed: %w", err)
		}
		return nil

	case domain.EventOrderDeleted:
		if err := r.client.SRem(ctx, userOrdersKeyPrefix+event.UserID, event.OrderID).Err(); err != nil {
			return fmt.Errorf("mirror order deleted: %w", err)
		}
		return nil
	}
	return nil
}

func (r *RedisAdapter) lower(ctx context.Context, key, value string) error {
	if err := lowerScript.Run(ctx, r.client, []string{key}, value).Err(); err != nil {
		return fmt.Errorf("mirror %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Stock(ctx context.Context, itemID string) (int, error) {
	return r.client.Get(ctx, stockKeyPrefix+itemID).Int()
}

func (r *RedisAdapter) Balance(ctx context.Context, userID string) (domain.Money, error) {
	raw, err := r.client.Get(ctx, balanceKeyPrefix+userID).Result()
	if err != nil {
		return domain.Money{}, err
	}
	return decimal.NewFromString(raw)
}

func (r *RedisAdapter) UserOrders(ctx context.Context, userID string) ([]string, error) {
	return r.client.SMembers(ctx, userOrdersKeyPrefix+userID).Result()
}
