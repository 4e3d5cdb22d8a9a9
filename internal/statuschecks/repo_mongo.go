package statuschecks

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"osapio-backend/internal/shared/storage/docstore"
)

// MongoRepo stores checks in the status_checks collection.
type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{coll: coll}
}

func (r *MongoRepo) Create(ctx context.Context, sc StatusCheck) error {
	if _, err := r.coll.InsertOne(ctx, sc); err != nil {
		return docstore.Classify("create status check", err)
	}
	return nil
}

func (r *MongoRepo) List(ctx context.Context, limit int) ([]StatusCheck, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, docstore.Classify("list status checks", err)
	}
	out := make([]StatusCheck, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, docstore.Classify("list status checks", err)
	}
	return out, nil
}

var _ Repo = (*MongoRepo)(nil)
