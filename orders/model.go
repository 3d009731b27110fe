package orders

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether the status is one of the known set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Customer is the delivery contact of an order. Guests order without an
// account, so the contact travels with the order rather than a user record.
type Customer struct {
	Name    string `bson:"name" json:"name" validate:"required"`
	Email   string `bson:"email" json:"email" validate:"required,email"`
	Phone   string `bson:"phone" json:"phone" validate:"required"`
	Address string `bson:"address" json:"address" validate:"required"`
}

// Item is one order line.
type Item struct {
	MedicineID primitive.ObjectID `bson:"medicine_id" json:"medicine_id" validate:"required"`
	Name       string             `bson:"name" json:"name"`
	Price      float64            `bson:"price" json:"price"`
	Quantity   int                `bson:"quantity" json:"quantity" validate:"gt=0"`
}

// Order is one placed order. UserID is nil for guest checkout.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Customer      Customer            `bson:"customer" json:"customer" validate:"required"`
	Items         []Item              `bson:"items" json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64             `bson:"total_amount" json:"total_amount" validate:"gte=0"`
	Status        Status              `bson:"status" json:"status"`
	PaymentMethod string              `bson:"payment_method" json:"payment_method"`
	PaymentStatus string              `bson:"payment_status" json:"payment_status"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}
