package handlers

import (
	"net/http"

	"github.com/Dias221467/EventEase/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Notifications *NotificationHandler
	Payments      *PaymentHandler
	Realtime      *RealtimeHandler
	JWTSecret     string
	RateLimiter   *middleware.RateLimiter
}

func (rt *Router) Build() *mux.Router {
	router := mux.NewRouter()

	notifRoutes := router.PathPrefix("/notifications").Subrouter()
	notifRoutes.HandleFunc("/{recipient}", rt.Notifications.GetNotificationsHandler).Methods("GET")
	notifRoutes.HandleFunc("/{recipient}/unread", rt.Notifications.GetUnreadCountHandler).Methods("GET")
	notifRoutes.HandleFunc("/{id}/read", rt.Notifications.MarkAsReadHandler).Methods("PUT")
	notifRoutes.HandleFunc("/{recipient}/read-all", rt.Notifications.MarkAllAsReadHandler).Methods("PUT")
	notifRoutes.HandleFunc("/{id}", rt.Notifications.DeleteNotificationHandler).Methods("DELETE")

	paymentRoutes := router.PathPrefix("/payments").Subrouter()
	paymentRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	if rt.RateLimiter != nil {
		paymentRoutes.Use(rt.RateLimiter.Middleware)
	}
	paymentRoutes.HandleFunc("/verify", rt.Payments.VerifyPaymentHandler).Methods("POST")

	router.HandleFunc("/ws", rt.Realtime.WebSocketHandler).Methods("GET")
	router.HandleFunc("/health", rt.Realtime.HealthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	router.Use(middleware.LoggingMiddleware)
	return router
}
