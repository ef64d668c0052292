package repo

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultRecentLimit = 20

var _ i.ResultRepo = &ResultRepo{}

// ResultRepo handles the persistence of finished games.
type ResultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new ResultRepo with the given MongoDB client, database name, and collection name.
func NewResultRepo(client *mongo.Client, dbName, collectionName string) *ResultRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &ResultRepo{
		collection: collection,
	}
}

// Save inserts or replaces a result.
func (r *ResultRepo) Save(ctx context.Context, result *dmn.Result) error {
	filter := bson.M{"_id": result.ID}
	update := bson.M{
		"$set": bson.M{
			"sessionId":  result.SessionID,
			"level":      result.Level,
			"rows":       result.Rows,
			"cols":       result.Cols,
			"mines":      result.Mines,
			"outcome":    result.Outcome,
			"elapsed":    result.Elapsed,
			"finishedAt": result.FinishedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// Recent returns up to limit results, newest first. A non-positive limit
// falls back to the default.
func (r *ResultRepo) Recent(ctx context.Context, limit int64) ([]dmn.Result, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "finishedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer cursor.Close(ctx)

	results := make([]dmn.Result, 0, limit)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return results, nil
}
