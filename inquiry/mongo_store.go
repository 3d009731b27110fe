package inquiry

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

// NewMongoStore wraps the given inquiries collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{col: coll}
}

func (s *MongoStore) Create(ctx context.Context, q *Inquiry) (*Inquiry, error) {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = StatusPending
	}

	res, err := s.col.InsertOne(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = res.InsertedID.(primitive.ObjectID)
	return q, nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Inquiry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Inquiry, error) {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var q Inquiry
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInquiryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
