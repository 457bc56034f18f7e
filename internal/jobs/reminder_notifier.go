package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const reminderWindow = 24 * time.Hour

type UpcomingBookings interface {
	GetUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}

type NotificationCreator interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
}

// ReminderNotifier sends SERVICE_REMINDER notifications for confirmed
// bookings that start within the next 24 hours.
type ReminderNotifier struct {
	Bookings      UpcomingBookings
	Notifications NotificationCreator
	Now           func() time.Time
}

func NewReminderNotifier(bookings UpcomingBookings, notifications NotificationCreator) *ReminderNotifier {
	return &ReminderNotifier{
		Bookings:      bookings,
		Notifications: notifications,
		Now:           time.Now,
	}
}

// RunScan reminds customer and provider of each upcoming booking once. A
// booking is marked reminded only when both notifications were stored, so a
// failed one is retried on the next scan.
func (n *ReminderNotifier) RunScan(ctx context.Context) (int, error) {
	now := n.Now()
	bookings, err := n.Bookings.GetUpcomingUnreminded(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch upcoming bookings: %v", err)
	}

	reminded := 0
	for _, b := range bookings {
		bookingID, serviceID := b.ID, b.ServiceID
		when := b.StartTime.Format("Jan 2 at 15:04")

		notifs := []*models.Notification{
			{
				Recipient: b.CustomerID,
				Title:     "Upcoming Booking",
				Message:   fmt.Sprintf("Reminder: your %s booking is scheduled for %s.", b.ServiceType, when),
			},
			{
				Recipient: b.ServiceID,
				Title:     "Upcoming Service",
				Message:   fmt.Sprintf("Reminder: you have a %s booking scheduled for %s.", b.ServiceType, when),
			},
		}

		ok := true
		for _, notif := range notifs {
			notif.Type = models.NotificationServiceReminder
			notif.BookingID = &bookingID
			notif.ServiceID = &serviceID
			if _, err := n.Notifications.CreateNotification(ctx, notif); err != nil {
				ok = false
				logrus.WithError(err).WithFields(logrus.Fields{
					"bookingID": b.ID.Hex(),
					"recipient": notif.Recipient.Hex(),
				}).Warn("Failed to send service reminder")
			}
		}
		if !ok {
			continue
		}

		if err := n.Bookings.MarkReminderSent(ctx, b.ID); err != nil {
			logrus.WithError(err).WithField("bookingID", b.ID.Hex()).Warn("Failed to mark reminder as sent")
			continue
		}
		reminded++
	}

	logrus.WithField("reminded", reminded).Info("Service reminder scan completed")
	return reminded, nil
}
