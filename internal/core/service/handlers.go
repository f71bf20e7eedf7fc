package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/campus-canteen/internal/core/domain"
	"github.com/rl1809/campus-canteen/internal/port"
)

const (
	ParamUserID      = "userId"
	ParamName        = "name"
	ParamYearLevel   = "yearLevel"
	ParamItemID      = "itemId"
	ParamDescription = "description"
	ParamPrice       = "price"
	ParamItemType    = "type"
	ParamOrderID     = "orderId"
	ParamOrderType   = "orderType"
)

// requireParams returns the values of names in order, or the first one missing.
func requireParams(req Request, names ...string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		v, ok := req.Param(name)
		if !ok {
			return nil, domain.MissingParameter(name)
		}
		values[i] = v
	}
	return values, nil
}

const (
	maxPriceLength   = 32
	maxPriceExponent = 9
)

var maxPrice = decimal.New(1, maxPriceExponent)

// parsePrice accepts non-negative decimals up to maxPrice. The exponent is bounded
// before any comparison, since rescaling a value like 1e20000000 is unbounded work.
func parsePrice(raw string) (domain.Money, error) {
	invalid := domain.InvalidArgument("Invalid price: " + raw)
	if len(raw) > maxPriceLength {
		return domain.Money{}, invalid
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Money{}, invalid
	}
	if exp := price.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return domain.Money{}, invalid
	}
	if price.IsNegative() || price.GreaterThan(maxPrice) {
		return domain.Money{}, invalid
	}
	return price, nil
}

func Ping() HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		return Greeting, nil
	}
}

func CreateUser(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamUserID, ParamName, ParamYearLevel)
		if err != nil {
			return "", err
		}

		if _, err := store.CreateUser(p[0], p[1], p[2]); err != nil {
			return "", err
		}
		return Success, nil
	}
}

func AddMenuItem(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamItemID, ParamName, ParamDescription, ParamPrice, ParamItemType)
		if err != nil {
			return "", err
		}
		price, err := parsePrice(p[3])
		if err != nil {
			return "", err
		}

		if _, err := store.CreateMenuItem(p[0], p[1], p[2], price, p[4]); err != nil {
			return "", err
		}
		return Success, nil
	}
}

func PlaceOrder(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamUserID, ParamOrderID, ParamItemID, ParamOrderType)
		if err != nil {
			return "", err
		}

		if _, err := store.PlaceOrder(p[0], p[2], p[1], domain.OrderType(p[3])); err != nil {
			return "", err
		}
		return Success, nil
	}
}

func DeleteOrder(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamUserID, ParamOrderID)
		if err != nil {
			return "", err
		}

		if _, err := store.DeleteOrder(p[0], p[1]); err != nil {
			return "", err
		}
		return Success, nil
	}
}

func GetItem(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamItemID)
		if err != nil {
			return "", err
		}
		item, err := store.GetMenuItem(p[0])
		if err != nil {
			return "", err
		}
		return item.String(), nil
	}
}

func GetUser(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamUserID)
		if err != nil {
			return "", err
		}
		user, err := store.GetUser(p[0])
		if err != nil {
			return "", err
		}
		return user.String(), nil
	}
}

func GetOrder(store port.EntityStore) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		p, err := requireParams(req, ParamOrderID)
		if err != nil {
			return "", err
		}
		order, err := store.GetOrder(p[0])
		if err != nil {
			return "", err
		}
		return order.String(), nil
	}
}
