package bookingRepo

import (
	"context"

	"seabook/database"
	"seabook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository persists accepted bookings. The collection is
// append-mostly: inserts plus status/payment updates only.
type BookingRepository interface {
	Create(ctx context.Context, booking models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetPayment(ctx context.Context, id string, payment models.PaymentSummary, status string) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database("seabook").Collection("bookings")
	return &mongoBookingRepo{coll: coll}
}
