package catalog

import (
	"context"
	"errors"
)

// Store-level errors.
var (
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store persists Medicine records.
type Store interface {
	// List returns medicines newest first, optionally filtered by category
	// and a case-insensitive search over name and description.
	List(ctx context.Context, category, search string) ([]Medicine, error)

	Get(ctx context.Context, id string) (*Medicine, error)
	Create(ctx context.Context, m *Medicine) error
	Update(ctx context.Context, id string, m *Medicine) (*Medicine, error)
	Delete(ctx context.Context, id string) error

	// DecrementStock atomically reduces stock by the given quantity, failing
	// with ErrInsufficientStock when less is on hand.
	DecrementStock(ctx context.Context, id string, quantity int) error
}
