package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// MongoPickRepository stores raw pick records as they arrive from form
// submissions, one document per pick. The grouper reads from here; scored
// and reconciled state lives on pick set documents.
type MongoPickRepository struct {
	collection *mongo.Collection
}

// NewMongoPickRepository creates a new MongoDB pick repository
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("picks")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "week", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "game_id", Value: 1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logging.Warnf("Could not create pick indexes: %v", err)
	}

	return &MongoPickRepository{collection: collection}
}

// Create inserts a new raw pick record
func (r *MongoPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	if _, err := r.collection.InsertOne(ctx, pick); err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}
	return nil
}

// CreateMany inserts multiple picks in batch
func (r *MongoPickRepository) CreateMany(ctx context.Context, picks []*models.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	docs := make([]interface{}, len(picks))
	for i, pick := range picks {
		docs[i] = pick
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create picks batch: %w", err)
	}
	return nil
}

// FindByWeek retrieves all raw pick records for a season/week
func (r *MongoPickRepository) FindByWeek(ctx context.Context, season, week int) ([]models.Pick, error) {
	filter := bson.M{
		"season": season,
		"week":   week,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks by week: %w", err)
	}
	defer cursor.Close(ctx)

	var picks []models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}

	return picks, nil
}
