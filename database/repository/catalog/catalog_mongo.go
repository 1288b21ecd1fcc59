package catalogRepo

import (
	"context"
	"fmt"

	"seabook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SearchCruiseByReference looks up a sailing by its reference, or returns
// (nil, nil) when the catalog has no such cruise.
func (r *mongoCatalogRepo) SearchCruiseByReference(ctx context.Context, cruiseReference string) (*models.CruiseSummary, error) {
	var summary models.CruiseSummary
	err := r.coll.FindOne(ctx, bson.M{"cruise_reference": cruiseReference}).Decode(&summary)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up cruise %s: %w", cruiseReference, err)
	}
	return &summary, nil
}
