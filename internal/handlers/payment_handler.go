package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/services"
	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/Dias221467/EventEase/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PackageRequest struct {
	PackageID          string `json:"package_id"`
	PackageName        string `json:"package_name" validate:"required"`
	PackagePrice       int64  `json:"package_price" validate:"gte=0"`
	PackageDescription string `json:"package_description"`
	NumberOfPeople     int    `json:"number_of_people" validate:"gte=0"`
	PricePerPerson     int64  `json:"price_per_person" validate:"gte=0"`
}

type VerifyPaymentRequest struct {
	OrderID     string          `json:"order_id" validate:"required"`
	PaymentID   string          `json:"payment_id" validate:"required"`
	Signature   string          `json:"signature" validate:"required,hexadecimal"`
	CustomerID  string          `json:"customer_id" validate:"required,mongodb"`
	ServiceID   string          `json:"service_id" validate:"required,mongodb"`
	ServiceType string          `json:"serviceType" validate:"required,oneof=hall decoration catering"`
	StartTime   time.Time       `json:"startTime" validate:"required"`
	EndTime     time.Time       `json:"endTime" validate:"required,gtfield=StartTime"`
	Amount      int64           `json:"amount" validate:"gt=0"`
	Package     *PackageRequest `json:"package_details"`
}

type bookingSummary struct {
	ID             string                 `json:"id"`
	ServiceType    string                 `json:"serviceType"`
	StartTime      time.Time              `json:"startTime"`
	EndTime        time.Time              `json:"endTime"`
	Amount         int64                  `json:"amount"`
	PackageDetails *models.BookingPackage `json:"package_details,omitempty"`
}

type PaymentHandler struct {
	Service  *services.BookingService
	validate *validator.Validate
}

func NewPaymentHandler(service *services.BookingService) *PaymentHandler {
	return &PaymentHandler{Service: service, validate: validator.New()}
}

// POST /payments/verify
func (h *PaymentHandler) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if claims.UserID != req.CustomerID && claims.Role != "admin" {
		logger.Log.Warnf("User %s tried to pay for customer %s", claims.UserID, req.CustomerID)
		writeError(w, http.StatusForbidden, "Cannot book on behalf of another customer")
		return
	}

	// Both ids were validated as ObjectID hex above.
	customerID, _ := primitive.ObjectIDFromHex(req.CustomerID)
	serviceID, _ := primitive.ObjectIDFromHex(req.ServiceID)

	booking, err := h.Service.VerifyAndBook(r.Context(), services.PaymentVerification{
		OrderID:     req.OrderID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		CustomerID:  customerID,
		ServiceID:   serviceID,
		ServiceType: req.ServiceType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Amount:      req.Amount,
		Package:     req.Package.toModel(),
	})
	if errors.Is(err, services.ErrInvalidSignature) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "failure", "message": "Invalid signature"})
		return
	}
	if err != nil {
		logger.Log.Errorf("Payment verification failed for order %s: %v", req.OrderID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Internal server error"})
		return
	}

	logger.Log.Infof("Booking %s confirmed for customer %s", booking.ID.Hex(), req.CustomerID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"booking": bookingSummary{
			ID:             booking.ID.Hex(),
			ServiceType:    booking.ServiceType,
			StartTime:      booking.StartTime,
			EndTime:        booking.EndTime,
			Amount:         booking.Amount,
			PackageDetails: booking.PackageDetails,
		},
	})
}

func (p *PackageRequest) toModel() *models.BookingPackage {
	if p == nil {
		return nil
	}
	return &models.BookingPackage{
		PackageID:          p.PackageID,
		PackageName:        p.PackageName,
		PackagePrice:       p.PackagePrice,
		PackageDescription: p.PackageDescription,
		NumberOfPeople:     p.NumberOfPeople,
		PricePerPerson:     p.PricePerPerson,
	}
}
