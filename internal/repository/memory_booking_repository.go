package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryBookingRepository is the in-process booking store used with STORE_DRIVER=memory.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]models.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[primitive.ObjectID]models.Booking)}
}

func (r *MemoryBookingRepository) CreateBooking(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.bookings[booking.ID] = *booking
	return booking, nil
}

func (r *MemoryBookingRepository) GetUpcomingUnreminded(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if b.Status != models.BookingStatusConfirmed || b.ReminderSent {
			continue
		}
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *MemoryBookingRepository) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.ReminderSent = true
	b.UpdatedAt = time.Now()
	r.bookings[id] = b
	return nil
}
