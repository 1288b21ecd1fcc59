package sessionRepo

import (
	"context"

	"seabook/database"
	"seabook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository is the durable half of the dual session store. The fast
// path lives in redis; this store survives cache evictions and carries the
// TTL index that reaps tombstoned sessions.
type SessionRepository interface {
	Create(ctx context.Context, session models.BookingSession) error
	GetByID(ctx context.Context, id string) (*models.BookingSession, error)
	Update(ctx context.Context, session models.BookingSession) error
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo returns a SessionRepository backed by MongoDB.
func NewMongoSessionRepo() SessionRepository {
	coll := database.MongoClient.Database("seabook").Collection("booking_sessions")
	repo := &mongoSessionRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utilLogIndexError("booking_sessions", err)
	}
	return repo
}
