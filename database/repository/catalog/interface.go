package catalogRepo

import (
	"context"

	"seabook/database"
	"seabook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository is the read-only view of the cruise catalog maintained
// by the ingestion pipeline. This service never writes to it.
type CatalogRepository interface {
	SearchCruiseByReference(ctx context.Context, cruiseReference string) (*models.CruiseSummary, error)
}

type mongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo returns a CatalogRepository backed by MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	coll := database.MongoClient.Database("seabook").Collection("cruises")
	return &mongoCatalogRepo{coll: coll}
}
