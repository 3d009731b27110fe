package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultImage is used when a medicine is created without a product photo.
const DefaultImage = "https://placehold.co/300x300?text=Medicine"

// Medicine is one catalog entry.
type Medicine struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name" validate:"required"`
	Description          string             `bson:"description" json:"description" validate:"required"`
	Price                float64            `bson:"price" json:"price" validate:"gte=0"`
	Category             string             `bson:"category" json:"category" validate:"required"`
	Manufacturer         string             `bson:"manufacturer" json:"manufacturer" validate:"required"`
	Stock                int                `bson:"stock" json:"stock" validate:"gte=0"`
	Image                string             `bson:"image" json:"image"`
	PrescriptionRequired bool               `bson:"prescription_required" json:"prescription_required"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

// Categories is the closed set of catalog categories.
var Categories = []string{
	"Pain Relief",
	"Antibiotics",
	"Vitamins",
	"Cold & Flu",
	"Diabetes",
	"Heart Care",
	"Digestive",
	"Children Products",
	"Beauty",
	"Perfume",
	"Protection",
	"Other",
}

// ValidCategory reports whether the category is one of the known set.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
