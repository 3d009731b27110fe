package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists medicines in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps a medicines collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) List(ctx context.Context, category, search string) ([]Medicine, error) {
	filter := bson.M{}
	if category != "" && category != "All" {
		filter["category"] = category
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	medicines := []Medicine{}
	if err := cursor.All(ctx, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Medicine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMedicineNotFound
	}

	var m Medicine
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) Create(ctx context.Context, m *Medicine) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.Image == "" {
		m.Image = DefaultImage
	}

	_, err := s.coll.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) Update(ctx context.Context, id string, m *Medicine) (*Medicine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMedicineNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":                  m.Name,
		"description":           m.Description,
		"price":                 m.Price,
		"category":              m.Category,
		"manufacturer":          m.Manufacturer,
		"stock":                 m.Stock,
		"image":                 m.Image,
		"prescription_required": m.PrescriptionRequired,
		"updated_at":            time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Medicine
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMedicineNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

// DecrementStock relies on a filtered update so the stock check and the
// decrement are one atomic operation on the server.
func (s *MongoStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMedicineNotFound
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing medicine from insufficient stock.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}
