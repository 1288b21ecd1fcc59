package basketRepo

import (
	"context"

	"seabook/database"
	"seabook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BasketSnapshotRepository keeps the last good committed basket per session,
// outside the ephemeral store. The provider's basket retrieval can
// transiently come back empty after a successful add; callers are then
// served this snapshot instead.
type BasketSnapshotRepository interface {
	Save(ctx context.Context, item models.BasketItem) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.BasketItem, error)
}

type mongoBasketRepo struct {
	coll *mongo.Collection
}

// NewMongoBasketRepo returns a BasketSnapshotRepository backed by MongoDB.
func NewMongoBasketRepo() BasketSnapshotRepository {
	coll := database.MongoClient.Database("seabook").Collection("basket_snapshots")
	return &mongoBasketRepo{coll: coll}
}
