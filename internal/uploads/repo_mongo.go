package uploads

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"osapio-backend/internal/shared/storage/docstore"
)

// MongoRepo implements Repo on the file_uploads collection. Records are
// addressed by their id field together with user_id.
type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{coll: coll}
}

// EnsureIndexes creates the owner listing index and the unique id index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "upload_timestamp", Value: -1}}},
	})
	return docstore.Classify("create upload indexes", err)
}

func (r *MongoRepo) Create(ctx context.Context, u Upload) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return docstore.Classify("create upload", err)
	}
	return nil
}

func (r *MongoRepo) Get(ctx context.Context, userID, id string) (Upload, error) {
	var u Upload
	if err := r.coll.FindOne(ctx, owned(userID, id)).Decode(&u); err != nil {
		return Upload{}, mapMongoErr("get upload", err)
	}
	return u, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Upload, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "upload_timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, docstore.Classify("list uploads", err)
	}
	out := make([]Upload, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, docstore.Classify("list uploads", err)
	}
	return out, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return docstore.Classify("delete upload", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SetStatus(ctx context.Context, userID, id string, upd StatusUpdate) (Upload, error) {
	set := bson.M{"analysis_status": upd.Status}
	if upd.Result != nil {
		set["analysis_result"] = *upd.Result
	}
	if upd.AnalyzedAt != nil {
		set["analyzed_at"] = *upd.AnalyzedAt
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u Upload
	err := r.coll.FindOneAndUpdate(ctx, owned(userID, id), bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		return Upload{}, mapMongoErr("set upload status", err)
	}
	return u, nil
}

func owned(userID, id string) bson.M {
	return bson.M{"id": id, "user_id": userID}
}

func mapMongoErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return docstore.Classify(op, err)
}

var _ Repo = (*MongoRepo)(nil)
