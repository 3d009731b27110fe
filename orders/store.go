package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrOrderNotFound is returned when the referenced order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// Store persists orders.
type Store interface {
	// Create inserts the order and returns it with its assigned ID.
	Create(ctx context.Context, o *Order) (*Order, error)

	// Get returns one order by its ID.
	Get(ctx context.Context, id primitive.ObjectID) (*Order, error)

	// List returns all orders, newest first.
	List(ctx context.Context) ([]*Order, error)

	// ListByUser returns the orders placed by one account, newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error)

	// UpdateStatus sets the order status and returns the updated order.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Order, error)
}
