package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore wraps the given orders collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{col: coll}
}

func (s *MongoStore) Create(ctx context.Context, o *Order) (*Order, error) {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPending
	}

	res, err := s.col.InsertOne(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return o, nil
}

func (s *MongoStore) Get(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var o Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]*Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Order, error) {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
