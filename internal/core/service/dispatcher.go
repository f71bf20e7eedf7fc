package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/campus-canteen/internal/core/domain"
	"github.com/rl1809/campus-canteen/internal/port"
)

const (
	CommandPing        = "ping"
	CommandCreateUser  = "create-user"
	CommandAddMenuItem = "add-menu-item"
	CommandPlaceOrder  = "place-order"
	CommandDeleteOrder = "delete-order"
	CommandGetItem     = "get-item"
	CommandGetUser     = "get-user"
	CommandGetOrder    = "get-order"
)

const (
	Greeting = "Hello, internet"
	Success  = "success"

	errorPrefix = "Error: "
)

// HandlerFunc runs one command. Failures are returned, never written into the result.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Middleware wraps a handler. The first middleware given to the dispatcher is outermost.
type Middleware func(next HandlerFunc) HandlerFunc

type Dispatcher struct {
	logger      *zap.Logger
	middlewares []Middleware

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewDispatcher wires the built-in commands against store.
func NewDispatcher(store port.EntityStore, logger *zap.Logger, middlewares ...Middleware) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		logger:      logger,
		middlewares: middlewares,
		handlers:    make(map[string]HandlerFunc),
	}

	d.Register(CommandPing, Ping())
	d.Register(CommandCreateUser, CreateUser(store))
	d.Register(CommandAddMenuItem, AddMenuItem(store))
	d.Register(CommandPlaceOrder, PlaceOrder(store))
	d.Register(CommandDeleteOrder, DeleteOrder(store))
	d.Register(CommandGetItem, GetItem(store))
	d.Register(CommandGetUser, GetUser(store))
	d.Register(CommandGetOrder, GetOrder(store))

	return d
}

// Register binds name to fn, replacing any previous handler.
func (d *Dispatcher) Register(name string, fn HandlerFunc) {
	wrapped := fn
	for i := len(d.middlewares) - 1; i >= 0; i-- {
		wrapped = d.middlewares[i](wrapped)
	}

	d.mu.Lock()
	d.handlers[name] = wrapped
	d.mu.Unlock()
}

func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for req.Command and always returns a result string.
// Failures come back as "Error: <message>".
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (result string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked",
				zap.String("command", req.Command),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			result = errorPrefix + fmt.Sprintf("internal error: %v", r)
		}
	}()

	d.mu.RLock()
	fn, ok := d.handlers[req.Command]
	d.mu.RUnlock()

	if !ok {
		err := domain.UnknownCommand(req.Command)
		d.logger.Info("unknown command", zap.String("command", req.Command))
		return errorPrefix + err.Error()
	}

	out, err := fn(ctx, req)
	if err != nil {
		return errorPrefix + err.Error()
	}
	return out
}
