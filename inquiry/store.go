package inquiry

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInquiryNotFound is returned when the referenced inquiry does not exist.
var ErrInquiryNotFound = errors.New("inquiry not found")

// Store persists inquiries.
type Store interface {
	Create(ctx context.Context, q *Inquiry) (*Inquiry, error)

	// List returns all inquiries, newest first.
	List(ctx context.Context) ([]*Inquiry, error)

	// UpdateStatus sets the inquiry status and returns the updated record.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Inquiry, error)
}
