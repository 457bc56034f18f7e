package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ServiceTypeHall       = "hall"
	ServiceTypeDecoration = "decoration"
	ServiceTypeCatering   = "catering"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a paid reservation of a provider's time slot.
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID     primitive.ObjectID `bson:"customer_id" json:"customerId"`
	ServiceID      primitive.ObjectID `bson:"service_id" json:"serviceId"`
	ServiceType    string             `bson:"service_type" json:"serviceType"`
	StartTime      time.Time          `bson:"start_time" json:"startTime"`
	EndTime        time.Time          `bson:"end_time" json:"endTime"`
	Status         string             `bson:"status" json:"status"`
	OrderID        string             `bson:"order_id" json:"orderId"`
	PaymentID      string             `bson:"payment_id" json:"paymentId"`
	Amount         int64              `bson:"amount" json:"amount"`
	PackageDetails *BookingPackage    `bson:"package_details,omitempty" json:"packageDetails,omitempty"`
	ReminderSent   bool               `bson:"reminder_sent" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type BookingPackage struct {
	PackageID          string `bson:"package_id,omitempty" json:"packageId,omitempty"`
	PackageName        string `bson:"package_name" json:"packageName"`
	PackagePrice       int64  `bson:"package_price,omitempty" json:"packagePrice,omitempty"`
	PackageDescription string `bson:"package_description,omitempty" json:"packageDescription,omitempty"`
	NumberOfPeople     int    `bson:"number_of_people,omitempty" json:"numberOfPeople,omitempty"` // catering only
	PricePerPerson     int64  `bson:"price_per_person,omitempty" json:"pricePerPerson,omitempty"` // catering only
}

// NotificationPackage converts the booking package into the notification metadata shape.
func (p *BookingPackage) NotificationPackage() *PackageDetails {
	if p == nil {
		return nil
	}
	return &PackageDetails{
		PackageName:    p.PackageName,
		NumberOfPeople: p.NumberOfPeople,
		PricePerPerson: p.PricePerPerson,
	}
}
