package inquiry

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of an inquiry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// ValidStatus reports whether the status is one of the known set.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusResolved
}

// Inquiry is a contact-form message from a visitor.
type Inquiry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Phone     string             `bson:"phone" json:"phone" validate:"required"`
	Address   string             `bson:"address" json:"address"`
	Message   string             `bson:"message" json:"message" validate:"required"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
