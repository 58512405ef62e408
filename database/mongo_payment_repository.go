package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cfb-pickem-go/models"
)

// MongoPaymentRepository handles payment eligibility records
type MongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new MongoDB payment repository
func NewMongoPaymentRepository(db *MongoDB) *MongoPaymentRepository {
	return &MongoPaymentRepository{collection: db.GetCollection("payments")}
}

// IsPaid reports whether the user has a paid record for the season
func (r *MongoPaymentRepository) IsPaid(ctx context.Context, userID, season int) (bool, error) {
	var record models.PaymentRecord
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "season": season}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up payment for user %d: %w", userID, err)
	}
	return record.Paid, nil
}

// Upsert records a payment state for a user and season
func (r *MongoPaymentRepository) Upsert(ctx context.Context, record *models.PaymentRecord) error {
	filter := bson.M{"user_id": record.UserID, "season": record.Season}
	update := bson.M{"$set": record}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert payment record: %w", err)
	}
	return nil
}
