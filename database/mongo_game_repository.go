package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// MongoGameRepository handles game storage. Games are written by the score
// ingestion side and read by the scoring engine.
type MongoGameRepository struct {
	collection *mongo.Collection
}

// NewMongoGameRepository creates a new MongoDB game repository
func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	collection := db.GetCollection("games")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "week", Value: 1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logging.Warnf("Could not create game indexes: %v", err)
	}

	return &MongoGameRepository{collection: collection}
}

// Upsert creates or updates a game by its external ID
func (r *MongoGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	filter := bson.M{"id": game.ID}
	update := bson.M{"$set": game}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert game %d: %w", game.ID, err)
	}
	return nil
}

// FindByID retrieves a game by its external ID
func (r *MongoGameRepository) FindByID(ctx context.Context, gameID int) (*models.Game, error) {
	var game models.Game
	err := r.collection.FindOne(ctx, bson.M{"id": gameID}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find game %d: %w", gameID, err)
	}
	return &game, nil
}

// FindByWeek retrieves all games for a season/week
func (r *MongoGameRepository) FindByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"season": season, "week": week})
	if err != nil {
		return nil, fmt.Errorf("failed to find games by week: %w", err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	for cursor.Next(ctx) {
		var game models.Game
		if err := cursor.Decode(&game); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, &game)
	}

	return games, nil
}

// CountByWeek returns the number of games on a week's slate
func (r *MongoGameRepository) CountByWeek(ctx context.Context, season, week int) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"season": season, "week": week})
	if err != nil {
		return 0, fmt.Errorf("failed to count games by week: %w", err)
	}
	return int(count), nil
}
