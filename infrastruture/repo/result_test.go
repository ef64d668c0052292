package repo

import (
	"context"
	"os"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestResultRepo runs against the MongoDB server named by RESULTS_TEST_MONGO_URI.
func TestResultRepo(t *testing.T) {
	uri := os.Getenv("RESULTS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RESULTS_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if !assert.NoError(t, err) {
		return
	}
	defer func() { _ = client.Disconnect(ctx) }()

	dbName := "results_test_" + uuid.NewString()[:8]
	defer func() { _ = client.Database(dbName).Drop(ctx) }()
	rr := NewResultRepo(client, dbName, "results")

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	older := &dmn.Result{ID: uuid.New(), SessionID: uuid.New(), Level: 1, Rows: 6, Cols: 6, Mines: 4, Outcome: dmn.OutcomeLost, Elapsed: 9, FinishedAt: base}
	newer := &dmn.Result{ID: uuid.New(), SessionID: uuid.New(), Level: 2, Rows: 8, Cols: 8, Mines: 10, Outcome: dmn.OutcomeWon, Elapsed: 70, FinishedAt: base.Add(time.Minute)}

	assert.NoError(t, rr.Save(ctx, older))
	assert.NoError(t, rr.Save(ctx, newer))

	t.Run("newest first", func(t *testing.T) {
		results, err := rr.Recent(ctx, 10)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Equal(t, newer.ID, results[0].ID)
		assert.Equal(t, dmn.OutcomeWon, results[0].Outcome)
		assert.Equal(t, older.SessionID, results[1].SessionID)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := rr.Recent(ctx, 1)
		assert.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("save replaces", func(t *testing.T) {
		older.Elapsed = 11
		assert.NoError(t, rr.Save(ctx, older))
		results, err := rr.Recent(ctx, 10)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Equal(t, 11, results[1].Elapsed)
	})
}
