package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"seabook/models"
	"seabook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func utilLogIndexError(coll string, err error) {
	utils.GetLogger().Warn("failed to create indexes",
		zap.String("collection", coll), zap.Error(err))
}

// ensureIndexes creates the unique id index and the TTL index that removes
// long-dead sessions a day after their provider expiry.
func (r *mongoSessionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((24 * time.Hour).Seconds()))},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking session document.
func (r *mongoSessionRepo) Create(ctx context.Context, session models.BookingSession) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert booking session %s: %w", session.ID, err)
	}
	return nil
}

// GetByID returns a booking session by its ID, or (nil, nil) when absent.
func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.BookingSession, error) {
	var session models.BookingSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking session %s: %w", id, err)
	}
	return &session, nil
}

// Update replaces the stored session document.
func (r *mongoSessionRepo) Update(ctx context.Context, session models.BookingSession) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": session.ID}, session)
	if err != nil {
		return fmt.Errorf("failed to update booking session %s: %w", session.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking session %s not found", session.ID)
	}
	return nil
}
