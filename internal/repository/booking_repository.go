package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingRepository handles database operations related to bookings.
type BookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		collection: db.Collection("bookings"),
	}
}

// CreateBooking inserts a booking and returns it with its generated id.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert booking into database")
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted booking ID")
	}
	booking.ID = insertedID

	logrus.WithField("bookingID", booking.ID.Hex()).Info("Booking inserted successfully")
	return booking, nil
}

// GetUpcomingUnreminded returns confirmed bookings starting in [from, to) that have not been reminded yet.
func (r *BookingRepository) GetUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":        models.BookingStatusConfirmed,
		"reminder_sent": bson.M{"$ne": true},
		"start_time":    bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// MarkReminderSent flags a booking so later scans skip it.
func (r *BookingRepository) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
