package handlers

import (
	"net/http"

	"github.com/Dias221467/EventEase/internal/services"
	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications/{recipient}
func (h *NotificationHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	recipient, ok := pathID(w, r, "recipient", "Invalid recipient ID")
	if !ok {
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), recipient)
	if err != nil {
		logger.Log.Errorf("Failed to fetch notifications for %s: %v", recipient.Hex(), err)
		writeServiceError(w, err, "Failed to fetch notifications")
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// GET /notifications/{recipient}/unread
func (h *NotificationHandler) GetUnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	recipient, ok := pathID(w, r, "recipient", "Invalid recipient ID")
	if !ok {
		return
	}

	count, err := h.Service.GetUnreadCount(r.Context(), recipient)
	if err != nil {
		logger.Log.Errorf("Failed to count unread notifications for %s: %v", recipient.Hex(), err)
		writeServiceError(w, err, "Failed to get unread count")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// PUT /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid notification ID")
	if !ok {
		return
	}

	if _, err := h.Service.MarkNotificationAsRead(r.Context(), id); err != nil {
		logger.Log.Errorf("Failed to mark notification %s as read: %v", id.Hex(), err)
		writeServiceError(w, err, "Failed to mark notification as read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PUT /notifications/{recipient}/read-all
func (h *NotificationHandler) MarkAllAsReadHandler(w http.ResponseWriter, r *http.Request) {
	recipient, ok := pathID(w, r, "recipient", "Invalid recipient ID")
	if !ok {
		return
	}

	modified, err := h.Service.MarkAllAsRead(r.Context(), recipient)
	if err != nil {
		logger.Log.Errorf("Failed to mark all notifications as read for %s: %v", recipient.Hex(), err)
		writeServiceError(w, err, "Failed to mark all notifications as read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "modified": modified})
}

// DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid notification ID")
	if !ok {
		return
	}

	if _, err := h.Service.DeleteNotification(r.Context(), id); err != nil {
		logger.Log.Errorf("Failed to delete notification %s: %v", id.Hex(), err)
		writeServiceError(w, err, "Failed to delete notification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func pathID(w http.ResponseWriter, r *http.Request, name, msg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return primitive.NilObjectID, false
	}
	return id, true
}
