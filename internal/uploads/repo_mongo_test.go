package uploads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"osapio-backend/internal/shared/apperr"
)

func uploadDoc(id, owner, name string, at time.Time) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "user_id", Value: owner},
		{Key: "filename", Value: name},
		{Key: "file_size", Value: int64(10)},
		{Key: "upload_timestamp", Value: at},
		{Key: "analysis_status", Value: "pending"},
	}
}

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := NewMongoRepo(mt.Coll).Create(context.Background(), Upload{ID: "id-1", UserID: "u1", Filename: "a.csv", UploadTimestamp: at})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("get filters by id and owner", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, uploadDoc("id-1", "u1", "a.csv", at)))

		u, err := NewMongoRepo(mt.Coll).Get(context.Background(), "u1", "id-1")
		require.NoError(mt, err)
		assert.Equal(mt, "a.csv", u.Filename)
		assert.Equal(mt, StatusPending, u.AnalysisStatus)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "id-1", filter.Lookup("id").StringValue())
		assert.Equal(mt, "u1", filter.Lookup("user_id").StringValue())
	})

	mt.Run("get other owner is not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := NewMongoRepo(mt.Coll).Get(context.Background(), "bob", "id-1")
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("list sorts newest first with limit", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				uploadDoc("id-2", "u1", "b.txt", at),
				uploadDoc("id-1", "u1", "a.txt", at.Add(-time.Hour))),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		items, err := NewMongoRepo(mt.Coll).ListByUser(context.Background(), "u1", 100)
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "id-2", items[0].ID)

		cmd := mt.GetStartedEvent().Command
		assert.EqualValues(mt, -1, cmd.Lookup("sort", "upload_timestamp").AsInt64())
		assert.EqualValues(mt, 100, cmd.Lookup("limit").AsInt64())
	})

	mt.Run("delete twice", func(mt *mtest.T) {
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}},
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}},
		)
		repo := NewMongoRepo(mt.Coll)
		require.NoError(mt, repo.Delete(context.Background(), "u1", "id-1"))
		assert.True(mt, errors.Is(repo.Delete(context.Background(), "u1", "id-1"), ErrNotFound))
	})

	mt.Run("set status returns updated record", func(mt *mtest.T) {
		doc := uploadDoc("id-1", "u1", "a.txt", at)
		doc[5] = bson.E{Key: "analysis_status", Value: "completed"}
		doc = append(doc, bson.E{Key: "analysis_result", Value: "summary"})
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}})

		result := "summary"
		u, err := NewMongoRepo(mt.Coll).SetStatus(context.Background(), "u1", "id-1", StatusUpdate{Status: StatusCompleted, Result: &result, AnalyzedAt: &at})
		require.NoError(mt, err)
		assert.Equal(mt, StatusCompleted, u.AnalysisStatus)
		require.NotNil(mt, u.AnalysisResult)
		assert.Equal(mt, "summary", *u.AnalysisResult)
	})

	mt.Run("set status missing", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})
		_, err := NewMongoRepo(mt.Coll).SetStatus(context.Background(), "u1", "ghost", StatusUpdate{Status: StatusFailed})
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("timeout is unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    50,
			Name:    "MaxTimeMSExpired",
			Message: "operation exceeded time limit",
		}))
		_, err := NewMongoRepo(mt.Coll).ListByUser(context.Background(), "u1", 100)
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindUnavailable, apperr.KindOf(err))
	})
}
