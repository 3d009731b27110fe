package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthProvider discriminates the two credential paths an account can use.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// Role of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Account is one principal. Exactly one of the two credential paths holds:
// a local account always carries a password hash, a google account never
// needs one.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name,omitempty" json:"name"`
	Email        string             `bson:"email,omitempty" json:"email"`
	PasswordHash string             `bson:"password,omitempty" json:"-"` // never expose in JSON
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	AuthProvider AuthProvider       `bson:"auth_provider" json:"auth_provider"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the account holds the administrative role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// ExternalProfile is the identity assertion delivered by the third-party
// provider callback: external subject id, the authoritative email address and
// a display name.
type ExternalProfile struct {
	ID    string
	Email string
	Name  string
}
