package domain

import "errors"

// Error kinds. Every failure returned by the store or a handler unwraps to one of these.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrMissingParameter  = errors.New("missing parameter")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOutOfStock        = errors.New("out of stock")
	ErrUnknownCommand    = errors.New("unknown command")
)

// Error is a request-scoped failure with a human readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUserNotFound      = newError(ErrNotFound, "User not found")
	ErrItemNotFound      = newError(ErrNotFound, "Item not found")
	ErrMenuItemNotFound  = newError(ErrNotFound, "Menu item not found")
	ErrOrderNotFound     = newError(ErrNotFound, "Order not found")
	ErrUserExists        = newError(ErrAlreadyExists, "User ID already exists")
	ErrMenuItemExists    = newError(ErrAlreadyExists, "Menu item ID already exists")
	ErrDuplicateOrder    = newError(ErrAlreadyExists, "Order ID already exists")
	ErrFundsInsufficient = newError(ErrInsufficientFunds, "Insufficient funds")
	ErrItemOutOfStock    = newError(ErrOutOfStock, "Item is out of stock")
)

func MissingParameter(name string) error {
	return newError(ErrMissingParameter, "Missing parameter: "+name)
}

func InvalidArgument(message string) error {
	return newError(ErrInvalidArgument, message)
}

func UnknownCommand(name string) error {
	return newError(ErrUnknownCommand, "Unknown command "+name+".")
}

// Kind reports the error kind name used in logs, or "internal" for anything else.
func Kind(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind.Error()
	}
	return "internal"
}
