package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// MongoPickSetRepository handles pick set storage. A pick set is one
// document, so assignment and scoring writes against a set are atomic at the
// document level.
type MongoPickSetRepository struct {
	collection *mongo.Collection
}

// NewMongoPickSetRepository creates a new MongoDB pick set repository
func NewMongoPickSetRepository(db *MongoDB) *MongoPickSetRepository {
	collection := db.GetCollection("pick_sets")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			// One set per submitter identity and minute-rounded submission
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "week", Value: 1},
				{Key: "email", Value: 1},
				{Key: "submitter_user_id", Value: 1},
				{Key: "submitted_at", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "week", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "assigned_user_id", Value: 1},
				{Key: "season", Value: 1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logging.Warnf("Could not create pick set indexes: %v", err)
	}

	return &MongoPickSetRepository{collection: collection}
}

// Upsert creates or updates a pick set keyed by submitter identity, week,
// and minute-rounded submission time
func (r *MongoPickSetRepository) Upsert(ctx context.Context, set *models.PickSet) error {
	set.UpdatedAt = time.Now()
	if set.CreatedAt.IsZero() {
		set.CreatedAt = set.UpdatedAt
	}

	filter := bson.M{
		"season":            set.Season,
		"week":              set.Week,
		"email":             set.Email,
		"submitter_user_id": set.SubmitterUserID,
		"submitted_at":      set.SubmittedAt,
	}

	update := bson.M{
		"$set": bson.M{
			"display_name":        set.DisplayName,
			"picks":               set.Picks,
			"is_authenticated":    set.IsAuthenticated,
			"show_on_leaderboard": set.ShowOnLeaderboard,
			"validation_status":   set.ValidationStatus,
			"processing_notes":    set.ProcessingNotes,
			"updated_at":          set.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": set.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert pick set: %w", err)
	}

	if result.UpsertedID != nil {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			set.ID = oid
		}
	}

	return nil
}

// FindByID retrieves a pick set by its ID
func (r *MongoPickSetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PickSet, error) {
	var set models.PickSet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pick set by ID: %w", err)
	}
	return &set, nil
}

// FindByWeek retrieves all pick sets for a season/week
func (r *MongoPickSetRepository) FindByWeek(ctx context.Context, season, week int) ([]*models.PickSet, error) {
	return r.find(ctx, bson.M{"season": season, "week": week})
}

// FindForUser retrieves the existing authoritative pick sets for a user in a
// season/week: authenticated submissions plus anonymous sets already assigned
// to the user and visible on the leaderboard
func (r *MongoPickSetRepository) FindForUser(ctx context.Context, userID, season, week int) ([]*models.PickSet, error) {
	filter := bson.M{
		"season": season,
		"week":   week,
		"$or": []bson.M{
			{"submitter_user_id": userID, "is_authenticated": true},
			{"assigned_user_id": userID, "show_on_leaderboard": true},
		},
	}
	return r.find(ctx, filter)
}

// FindLeaderboardCandidates retrieves all sets that can contribute to a
// season leaderboard: authenticated submissions and visible assigned
// anonymous ones. Week 0 means the whole season.
func (r *MongoPickSetRepository) FindLeaderboardCandidates(ctx context.Context, season, week int) ([]*models.PickSet, error) {
	filter := bson.M{
		"season": season,
		"$or": []bson.M{
			{"is_authenticated": true},
			{"assigned_user_id": bson.M{"$ne": nil}, "show_on_leaderboard": true},
		},
	}
	if week > 0 {
		filter["week"] = week
	}
	return r.find(ctx, filter)
}

// UpdateAssignment persists the reconciliation outcome for a set. All
// assignment fields go in one document update; there is no per-pick patching
// to partially fail.
func (r *MongoPickSetRepository) UpdateAssignment(ctx context.Context, set *models.PickSet) error {
	set.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"assigned_user_id":    set.AssignedUserID,
			"show_on_leaderboard": set.ShowOnLeaderboard,
			"validation_status":   set.ValidationStatus,
			"processing_notes":    set.ProcessingNotes,
			"updated_at":          set.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateByID(ctx, set.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update pick set assignment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pick set %s not found for assignment update", set.ID.Hex())
	}

	return nil
}

// PickResultUpdate describes how picks on one game should be scored,
// filtered by whether the pick's selected team matches Team and, optionally,
// by lock designation
type PickResultUpdate struct {
	GameID      int
	Team        string
	TeamMatches bool  // true: apply where selected_team == Team; false: where it differs
	Lock        *bool // nil: apply regardless of lock designation
	Result      models.PickResult
	Points      int
}

// ApplyGameResult writes scored results onto every pick referencing the game
// across all pick sets for the week. The write sets absolute values, so
// re-applying the same result is a no-op.
func (r *MongoPickSetRepository) ApplyGameResult(ctx context.Context, season, week int, update PickResultUpdate) (int64, error) {
	filter := bson.M{
		"season":        season,
		"week":          week,
		"picks.game_id": update.GameID,
	}

	elemFilter := bson.M{"elem.game_id": update.GameID}
	if update.Team != "" {
		if update.TeamMatches {
			elemFilter["elem.selected_team"] = update.Team
		} else {
			elemFilter["elem.selected_team"] = bson.M{"$ne": update.Team}
		}
	}
	if update.Lock != nil {
		elemFilter["elem.is_lock"] = *update.Lock
	}

	change := bson.M{
		"$set": bson.M{
			"picks.$[elem].result":        update.Result,
			"picks.$[elem].points_earned": update.Points,
			"updated_at":                  time.Now(),
		},
	}

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{elemFilter},
	})

	result, err := r.collection.UpdateMany(ctx, filter, change, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to apply game result: %w", err)
	}

	return result.ModifiedCount, nil
}

// find runs a filter and decodes all matching pick sets
func (r *MongoPickSetRepository) find(ctx context.Context, filter bson.M) ([]*models.PickSet, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find pick sets: %w", err)
	}
	defer cursor.Close(ctx)

	var sets []*models.PickSet
	for cursor.Next(ctx) {
		var set models.PickSet
		if err := cursor.Decode(&set); err != nil {
			return nil, fmt.Errorf("failed to decode pick set: %w", err)
		}
		sets = append(sets, &set)
	}

	return sets, nil
}
