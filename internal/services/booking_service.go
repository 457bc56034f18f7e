package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Dias221467/EventEase/internal/metrics"
	"github.com/Dias221467/EventEase/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unknownUser = "Unknown User"

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type Mailer interface {
	SendEmail(to, subject, body string) error
}

// NotificationCreator is the part of NotificationService the booking flow needs.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
}

// PaymentVerification is a gateway callback for a completed checkout.
type PaymentVerification struct {
	OrderID     string
	PaymentID   string
	Signature   string
	CustomerID  primitive.ObjectID
	ServiceID   primitive.ObjectID
	ServiceType string
	StartTime   time.Time
	EndTime     time.Time
	Amount      int64
	Package     *models.BookingPackage
}

// BookingService turns a verified payment into a confirmed booking, then
// notifies both parties. Notification work never fails the booking.
type BookingService struct {
	bookings      BookingStore
	users         UserLookup
	notifications NotificationCreator
	verifier      SignatureVerifier
	mailer        Mailer
}

func NewBookingService(bookings BookingStore, users UserLookup, notifications NotificationCreator, verifier SignatureVerifier) *BookingService {
	return &BookingService{
		bookings:      bookings,
		users:         users,
		notifications: notifications,
		verifier:      verifier,
	}
}

// WithMailer enables the confirmation email to the customer.
func (s *BookingService) WithMailer(m Mailer) *BookingService {
	s.mailer = m
	return s
}

// VerifyAndBook checks the payment signature, stores the booking and then
// sends the booking and payment notifications. Once the signature is valid,
// any booking failure produces a single error notification for the customer.
func (s *BookingService) VerifyAndBook(ctx context.Context, req PaymentVerification) (*models.Booking, error) {
	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		logrus.WithField("orderID", req.OrderID).Warn("Payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	// Notifications outlive a client that hangs up mid-request.
	notifyCtx := context.WithoutCancel(ctx)

	booking, err := s.CompleteBooking(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("orderID", req.OrderID).Error("Booking after verified payment failed")
		s.NotifyFailureBestEffort(notifyCtx, req)
		return nil, err
	}

	s.NotifyBestEffort(notifyCtx, booking)
	return booking, nil
}

// CompleteBooking persists a confirmed booking for a verified payment.
func (s *BookingService) CompleteBooking(ctx context.Context, req PaymentVerification) (*models.Booking, error) {
	if req.CustomerID.IsZero() || req.ServiceID.IsZero() {
		return nil, ErrInvalidRecipient
	}

	booking := &models.Booking{
		CustomerID:     req.CustomerID,
		ServiceID:      req.ServiceID,
		ServiceType:    req.ServiceType,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         models.BookingStatusConfirmed,
		OrderID:        req.OrderID,
		PaymentID:      req.PaymentID,
		Amount:         req.Amount,
		PackageDetails: bookingPackage(req.ServiceType, req.Package),
	}

	created, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"bookingID":  created.ID.Hex(),
		"customerID": created.CustomerID.Hex(),
		"serviceID":  created.ServiceID.Hex(),
	}).Info("Booking confirmed")
	return created, nil
}

// bookingPackage keeps the per-person fields only for catering.
func bookingPackage(serviceType string, p *models.BookingPackage) *models.BookingPackage {
	if p == nil {
		return nil
	}
	out := *p
	if serviceType != models.ServiceTypeCatering || p.NumberOfPeople == 0 {
		out.NumberOfPeople = 0
		out.PricePerPerson = 0
	}
	return &out
}

// NotifyBestEffort sends BOOKING_CREATED and PAYMENT_RECEIVED to the customer
// and the provider. Every failure is logged and swallowed.
func (s *BookingService) NotifyBestEffort(ctx context.Context, booking *models.Booking) {
	customer := s.lookupUser(ctx, booking.CustomerID)
	provider := s.lookupUser(ctx, booking.ServiceID)
	customerName, providerName := displayName(customer), displayName(provider)

	amount := formatAmount(booking.Amount)
	bookingID, serviceID := booking.ID, booking.ServiceID

	notifs := []*models.Notification{
		{
			Recipient: booking.CustomerID,
			Type:      models.NotificationBookingCreated,
			Title:     "Booking Confirmed",
			Message:   fmt.Sprintf("Your booking for %s service with %s has been confirmed.", booking.ServiceType, providerName),
		},
		{
			Recipient: booking.ServiceID,
			Type:      models.NotificationBookingCreated,
			Title:     "New Booking Received",
			Message:   fmt.Sprintf("You have received a new booking for your %s service from %s.", booking.ServiceType, customerName),
		},
		{
			Recipient: booking.CustomerID,
			Type:      models.NotificationPaymentReceived,
			Title:     "Payment Successful",
			Message:   fmt.Sprintf("Payment of ₹%s received for your %s booking.", amount, booking.ServiceType),
		},
		{
			Recipient: booking.ServiceID,
			Type:      models.NotificationPaymentReceived,
			Title:     "Payment Received",
			Message:   fmt.Sprintf("Payment of ₹%s received from %s for %s booking.", amount, customerName, booking.ServiceType),
		},
	}

	for _, n := range notifs {
		n.BookingID = &bookingID
		n.ServiceID = &serviceID
		n.Metadata = bookingMetadata(booking)
		if _, err := s.notifications.CreateNotification(ctx, n); err != nil {
			metrics.BestEffortFailures.WithLabelValues("notify").Inc()
			logrus.WithError(err).WithFields(logrus.Fields{
				"bookingID": booking.ID.Hex(),
				"recipient": n.Recipient.Hex(),
				"type":      n.Type,
			}).Error("Failed to create booking notification")
		}
	}

	s.sendConfirmationEmail(booking, customer, providerName, amount)
}

// NotifyFailureBestEffort tells the customer the payment could not be processed.
func (s *BookingService) NotifyFailureBestEffort(ctx context.Context, req PaymentVerification) {
	if req.CustomerID.IsZero() {
		return
	}

	n := &models.Notification{
		Recipient: req.CustomerID,
		Type:      models.NotificationBookingCancelled,
		Title:     "Payment Processing Error",
		Message:   "There was an error processing your payment. Please contact support.",
	}
	if !req.ServiceID.IsZero() {
		serviceID := req.ServiceID
		n.ServiceID = &serviceID
	}
	if req.Amount != 0 {
		amount := req.Amount
		n.Metadata = &models.NotificationMetadata{Amount: &amount}
	}

	if _, err := s.notifications.CreateNotification(ctx, n); err != nil {
		metrics.BestEffortFailures.WithLabelValues("notify").Inc()
		logrus.WithError(err).WithField("customerID", req.CustomerID.Hex()).Error("Failed to create payment error notification")
	}
}

func (s *BookingService) lookupUser(ctx context.Context, id primitive.ObjectID) *models.User {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		metrics.BestEffortFailures.WithLabelValues("lookup").Inc()
		logrus.WithError(err).WithField("userID", id.Hex()).Warn("User lookup failed, using placeholder name")
		return nil
	}
	return user
}

func (s *BookingService) sendConfirmationEmail(booking *models.Booking, customer *models.User, providerName, amount string) {
	if s.mailer == nil || customer == nil || customer.Email == "" {
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking for %s service with %s on %s has been confirmed.\nAmount paid: ₹%s\n\nThank you for using EventEase.",
		displayName(customer), booking.ServiceType, providerName,
		booking.StartTime.Format("Jan 2, 2006 15:04"), amount,
	)
	if err := s.mailer.SendEmail(customer.Email, "Booking Confirmed", body); err != nil {
		metrics.BestEffortFailures.WithLabelValues("email").Inc()
		logrus.WithError(err).WithField("bookingID", booking.ID.Hex()).Warn("Failed to send booking confirmation email")
	}
}

func bookingMetadata(b *models.Booking) *models.NotificationMetadata {
	amount := b.Amount
	return &models.NotificationMetadata{
		Amount:         &amount,
		PackageDetails: b.PackageDetails.NotificationPackage(),
	}
}

func displayName(u *models.User) string {
	if u == nil || u.DisplayName() == "" {
		return unknownUser
	}
	return u.DisplayName()
}

// formatAmount renders smallest-unit amounts in major units: 5000 -> "50", 12345 -> "123.45".
func formatAmount(amount int64) string {
	return strconv.FormatFloat(float64(amount)/100, 'f', -1, 64)
}
