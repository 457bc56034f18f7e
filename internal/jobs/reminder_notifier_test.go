package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingCreator struct {
	created []models.Notification
	failFor primitive.ObjectID
}

func (c *recordingCreator) CreateNotification(_ context.Context, n *models.Notification) (*models.Notification, error) {
	if n.Recipient == c.failFor {
		return nil, assert.AnError
	}
	c.created = append(c.created, *n)
	return n, nil
}

func book(t *testing.T, repo *repository.MemoryBookingRepository, start time.Time, status string) *models.Booking {
	t.Helper()
	b, err := repo.CreateBooking(context.Background(), &models.Booking{
		CustomerID:  primitive.NewObjectID(),
		ServiceID:   primitive.NewObjectID(),
		ServiceType: models.ServiceTypeHall,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Status:      status,
	})
	require.NoError(t, err)
	return b
}

func TestReminderNotifier_RemindsUpcomingOnce(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryBookingRepository()
	soon := book(t, repo, now.Add(3*time.Hour), models.BookingStatusConfirmed)
	book(t, repo, now.Add(48*time.Hour), models.BookingStatusConfirmed)
	book(t, repo, now.Add(2*time.Hour), models.BookingStatusCancelled)
	book(t, repo, now.Add(-time.Hour), models.BookingStatusConfirmed)

	creator := &recordingCreator{}
	n := NewReminderNotifier(repo, creator)
	n.Now = func() time.Time { return now }

	reminded, err := n.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)
	require.Len(t, creator.created, 2)

	recipients := []primitive.ObjectID{creator.created[0].Recipient, creator.created[1].Recipient}
	assert.ElementsMatch(t, []primitive.ObjectID{soon.CustomerID, soon.ServiceID}, recipients)
	for _, c := range creator.created {
		assert.Equal(t, models.NotificationServiceReminder, c.Type)
		assert.Equal(t, soon.ID, *c.BookingID)
		assert.Contains(t, c.Message, "May 10 at 12:00")
	}

	reminded, err = n.RunScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Len(t, creator.created, 2)
}

func TestReminderNotifier_RetriesWhenANotificationFails(t *testing.T) {
	now := time.Now()
	repo := repository.NewMemoryBookingRepository()
	b := book(t, repo, now.Add(time.Hour), models.BookingStatusConfirmed)

	creator := &recordingCreator{failFor: b.ServiceID}
	n := NewReminderNotifier(repo, creator)
	n.Now = func() time.Time { return now }

	reminded, err := n.RunScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)

	creator.failFor = primitive.NilObjectID
	reminded, err = n.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)
}
