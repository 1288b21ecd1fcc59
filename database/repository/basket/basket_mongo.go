package basketRepo

import (
	"context"
	"fmt"

	"seabook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Save upserts the snapshot keyed by session id. A session owns at most one
// in-flight basket item, so the latest commit always wins.
func (r *mongoBasketRepo) Save(ctx context.Context, item models.BasketItem) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"session_id": item.SessionID}, item, opts); err != nil {
		return fmt.Errorf("failed to save basket snapshot for session %s: %w", item.SessionID, err)
	}
	return nil
}

// GetBySessionID returns the snapshot for a session, or (nil, nil) when absent.
func (r *mongoBasketRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.BasketItem, error) {
	var item models.BasketItem
	if err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch basket snapshot for session %s: %w", sessionID, err)
	}
	return &item, nil
}
