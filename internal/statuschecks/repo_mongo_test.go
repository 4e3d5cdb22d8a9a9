package statuschecks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"osapio-backend/internal/shared/apperr"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := NewMongoRepo(mt.Coll).Create(context.Background(), StatusCheck{ID: "s1", ClientName: "web", Timestamp: at})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("list oldest first with limit", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "id", Value: "s1"}, {Key: "client_name", Value: "web"}, {Key: "timestamp", Value: at}},
				bson.D{{Key: "id", Value: "s2"}, {Key: "client_name", Value: "mobile"}, {Key: "timestamp", Value: at.Add(time.Minute)}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		items, err := NewMongoRepo(mt.Coll).List(context.Background(), listLimit)
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "web", items[0].ClientName)
		assert.True(mt, items[0].Timestamp.Equal(at))

		cmd := mt.GetStartedEvent().Command
		assert.EqualValues(mt, 1, cmd.Lookup("sort", "timestamp").AsInt64())
		assert.EqualValues(mt, listLimit, cmd.Lookup("limit").AsInt64())
	})

	mt.Run("timeout is unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    50,
			Name:    "MaxTimeMSExpired",
			Message: "operation exceeded time limit",
		}))
		_, err := NewMongoRepo(mt.Coll).List(context.Background(), listLimit)
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindUnavailable, apperr.KindOf(err))
	})
}
