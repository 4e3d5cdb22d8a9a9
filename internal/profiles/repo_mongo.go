package profiles

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"osapio-backend/internal/shared/storage/docstore"
)

// MongoRepo stores profiles in a collection with _id set to the subject id.
type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{coll: coll}
}

func (r *MongoRepo) Insert(ctx context.Context, p Profile) error {
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return docstore.Classify("insert profile", err)
	}
	return nil
}

func (r *MongoRepo) TouchLogin(ctx context.Context, uid string, at time.Time) (Profile, error) {
	return r.findAndSet(ctx, uid, bson.M{"last_login": at})
}

func (r *MongoRepo) Update(ctx context.Context, uid string, upd ProfileUpdate, at time.Time) (Profile, error) {
	set := bson.M{"updated_at": at}
	if upd.DisplayName != nil {
		set["display_name"] = *upd.DisplayName
	}
	return r.findAndSet(ctx, uid, set)
}

func (r *MongoRepo) findAndSet(ctx context.Context, uid string, set bson.M) (Profile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p Profile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": uid}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return Profile{}, mapErr("update profile", err)
	}
	return p, nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return docstore.Classify(op, err)
}

var _ Repo = (*MongoRepo)(nil)
