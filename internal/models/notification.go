package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType decides how the client colours and groups a notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationPaymentReceived  NotificationType = "PAYMENT_RECEIVED"
	NotificationServiceReminder  NotificationType = "SERVICE_REMINDER"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationBookingCreated, NotificationBookingConfirmed, NotificationBookingCancelled,
		NotificationPaymentReceived, NotificationServiceReminder:
		return true
	}
	return false
}

type Notification struct {
	ID        primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	Recipient primitive.ObjectID    `bson:"recipient" json:"recipient"`
	Type      NotificationType      `bson:"type" json:"type"`
	Title     string                `bson:"title" json:"title"`
	Message   string                `bson:"message" json:"message"`
	BookingID *primitive.ObjectID   `bson:"booking_id,omitempty" json:"bookingId,omitempty"` // weak reference, no cascade
	ServiceID *primitive.ObjectID   `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	IsRead    bool                  `bson:"is_read" json:"isRead"`
	Metadata  *NotificationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time             `bson:"created_at" json:"createdAt"`
}

// NotificationMetadata carries the payment facts that triggered a notification.
// Both fields are optional; nil means the event did not carry them.
type NotificationMetadata struct {
	Amount         *int64          `bson:"amount,omitempty" json:"amount,omitempty"` // smallest currency unit
	PackageDetails *PackageDetails `bson:"package_details,omitempty" json:"packageDetails,omitempty"`
}

type PackageDetails struct {
	PackageName    string `bson:"package_name" json:"packageName"`
	NumberOfPeople int    `bson:"number_of_people,omitempty" json:"numberOfPeople,omitempty"`
	PricePerPerson int64  `bson:"price_per_person,omitempty" json:"pricePerPerson,omitempty"`
}
