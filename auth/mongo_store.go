package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore persists accounts in a MongoDB collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

// NewMongoUserStore wraps a users collection and ensures the unique sparse
// indexes that back the account-uniqueness invariants. Sparse matters: google
// accounts may lack an email and local accounts lack a google_id.
func NewMongoUserStore(ctx context.Context, coll *mongo.Collection) (*MongoUserStore, error) {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return nil, err
	}
	return &MongoUserStore{coll: coll}, nil
}

// Create inserts a new account, normalizing the email to lower case.
func (s *MongoUserStore) Create(ctx context.Context, acc *Account) error {
	now := time.Now()
	acc.Email = normalizeEmail(acc.Email)
	acc.CreatedAt = now
	acc.UpdatedAt = now
	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, acc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAccount
	}
	return err
}

// FindByID loads an account by its hex object id, omitting the password hash.
func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	return s.findOne(ctx, bson.M{"_id": oid}, opts)
}

// FindByEmail loads an account by case-insensitive email.
func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// FindByGoogleID loads an account by external identity.
func (s *MongoUserStore) FindByGoogleID(ctx context.Context, googleID string) (*Account, error) {
	return s.findOne(ctx, bson.M{"google_id": googleID})
}

// LinkGoogle attaches an external identity to an existing account.
func (s *MongoUserStore) LinkGoogle(ctx context.Context, id, googleID string, role Role) (*Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	update := bson.M{"$set": bson.M{
		"google_id":     googleID,
		"auth_provider": ProviderGoogle,
		"role":          role,
		"updated_at":    time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var acc Account
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SetRole updates the account's role.
func (s *MongoUserStore) SetRole(ctx context.Context, id string, role Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrAccountNotFound
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*Account, error) {
	var acc Account
	err := s.coll.FindOne(ctx, filter, opts...).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
