package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/realtime"
	"github.com/Dias221467/EventEase/internal/repository"
	"github.com/Dias221467/EventEase/internal/services"
	jwtutil "github.com/Dias221467/EventEase/pkg/jwt"
	"github.com/Dias221467/EventEase/pkg/middleware"
	"github.com/Dias221467/EventEase/pkg/payment"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-jwt-secret"

type testServer struct {
	handler  http.Handler
	hub      *realtime.Hub
	notifs   *services.NotificationService
	repo     *repository.MemoryNotificationRepository
	signer   *payment.Verifier
	customer models.User
	provider models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		hub:      realtime.NewHub(),
		repo:     repository.NewMemoryNotificationRepository(),
		signer:   payment.NewVerifier("gateway-secret"),
		customer: models.User{ID: primitive.NewObjectID(), Username: "alice"},
		provider: models.User{ID: primitive.NewObjectID(), ServiceName: "Spice Caterers"},
	}
	ts.notifs = services.NewNotificationService(ts.repo, ts.hub)
	bookings := services.NewBookingService(
		repository.NewMemoryBookingRepository(),
		repository.NewMemoryUserRepository(ts.customer, ts.provider),
		ts.notifs,
		ts.signer,
	)

	ts.handler = (&Router{
		Notifications: NewNotificationHandler(ts.notifs),
		Payments:      NewPaymentHandler(bookings),
		Realtime:      NewRealtimeHandler(ts.hub, nil),
		JWTSecret:     testSecret,
		RateLimiter:   middleware.NewRateLimiter(100, 100),
	}).Build()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seed(t *testing.T, recipient primitive.ObjectID) *models.Notification {
	t.Helper()
	n, err := ts.notifs.CreateNotification(context.Background(), &models.Notification{
		Recipient: recipient,
		Type:      models.NotificationBookingConfirmed,
		Title:     "Booking Confirmed",
		Message:   "See you soon",
	})
	require.NoError(t, err)
	return n
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwtutil.GenerateToken(userID, "", "customer", testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestNotificationRoutes_ListAndCount(t *testing.T) {
	ts := newTestServer(t)
	recipient := ts.customer.ID

	rec := ts.do(t, http.MethodGet, "/notifications/"+recipient.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	n := ts.seed(t, recipient)
	ts.seed(t, ts.provider.ID)

	rec = ts.do(t, http.MethodGet, "/notifications/"+recipient.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, n.ID.Hex(), list[0]["id"])
	assert.Equal(t, recipient.Hex(), list[0]["recipient"])
	assert.Equal(t, "BOOKING_CONFIRMED", list[0]["type"])
	assert.Equal(t, false, list[0]["isRead"])
	assert.Contains(t, list[0], "createdAt")

	rec = ts.do(t, http.MethodGet, "/notifications/"+recipient.Hex()+"/unread", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestNotificationRoutes_InvalidIDs(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notifications/nope"},
		{http.MethodGet, "/notifications/nope/unread"},
		{http.MethodPut, "/notifications/nope/read"},
		{http.MethodPut, "/notifications/nope/read-all"},
		{http.MethodDelete, "/notifications/nope"},
	} {
		rec := ts.do(t, tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestNotificationRoutes_MarkReadAndDelete(t *testing.T) {
	ts := newTestServer(t)
	n := ts.seed(t, ts.customer.ID)

	rec := ts.do(t, http.MethodPut, "/notifications/"+primitive.NewObjectID().Hex()+"/read", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Notification not found"}`, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/notifications/"+n.ID.Hex()+"/read", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/notifications/"+ts.customer.ID.Hex()+"/read-all", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"modified":0}`, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/notifications/"+n.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/notifications/"+n.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenStore struct{}

func (brokenStore) Create(context.Context, *models.Notification) (*models.Notification, error) {
	return nil, assert.AnError
}
func (brokenStore) ListByRecipient(context.Context, primitive.ObjectID, int) ([]models.Notification, error) {
	return nil, assert.AnError
}
func (brokenStore) CountUnread(context.Context, primitive.ObjectID) (int64, error) {
	return 0, assert.AnError
}
func (brokenStore) MarkRead(context.Context, primitive.ObjectID) (*models.Notification, error) {
	return nil, assert.AnError
}
func (brokenStore) MarkAllRead(context.Context, primitive.ObjectID) (int64, error) {
	return 0, assert.AnError
}
func (brokenStore) Delete(context.Context, primitive.ObjectID) (*models.Notification, error) {
	return nil, assert.AnError
}

func TestNotificationRoutes_StorageFailureIs500(t *testing.T) {
	ts := newTestServer(t)
	ts.handler = (&Router{
		Notifications: NewNotificationHandler(services.NewNotificationService(brokenStore{}, ts.hub)),
		Payments:      NewPaymentHandler(nil),
		Realtime:      NewRealtimeHandler(ts.hub, nil),
		JWTSecret:     testSecret,
	}).Build()
	id := primitive.NewObjectID().Hex()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notifications/" + id},
		{http.MethodGet, "/notifications/" + id + "/unread"},
		{http.MethodPut, "/notifications/" + id + "/read"},
		{http.MethodPut, "/notifications/" + id + "/read-all"},
		{http.MethodDelete, "/notifications/" + id},
	} {
		rec := ts.do(t, tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func (ts *testServer) verifyBody(serviceType string) map[string]interface{} {
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	return map[string]interface{}{
		"order_id":    "order_9",
		"payment_id":  "pay_9",
		"signature":   ts.signer.Sign("order_9", "pay_9"),
		"customer_id": ts.customer.ID.Hex(),
		"service_id":  ts.provider.ID.Hex(),
		"serviceType": serviceType,
		"startTime":   start,
		"endTime":     start.Add(3 * time.Hour),
		"amount":      5000,
	}
}

func TestPaymentRoute_VerifyCreatesBookingAndNotifications(t *testing.T) {
	ts := newTestServer(t)
	body := ts.verifyBody(models.ServiceTypeCatering)
	body["package_details"] = map[string]interface{}{
		"package_name":     "Deluxe",
		"package_price":    5000,
		"number_of_people": 25,
		"price_per_person": 200,
	}

	rec := ts.do(t, http.MethodPost, "/payments/verify", body, tokenFor(t, ts.customer.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status  string `json:"status"`
		Booking struct {
			ID             string                `json:"id"`
			ServiceType    string                `json:"serviceType"`
			Amount         int64                 `json:"amount"`
			PackageDetails models.BookingPackage `json:"package_details"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Booking.ID)
	assert.Equal(t, int64(5000), resp.Booking.Amount)
	assert.Equal(t, 25, resp.Booking.PackageDetails.NumberOfPeople)

	count, err := ts.repo.CountUnread(context.Background(), ts.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	count, err = ts.repo.CountUnread(context.Background(), ts.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPaymentRoute_Rejections(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, ts.customer.ID.Hex())

	rec := ts.do(t, http.MethodPost, "/payments/verify", ts.verifyBody(models.ServiceTypeHall), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/payments/verify", "{not json", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := ts.verifyBody("spa")
	rec = ts.do(t, http.MethodPost, "/payments/verify", bad, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = ts.verifyBody(models.ServiceTypeHall)
	bad["customer_id"] = "123"
	rec = ts.do(t, http.MethodPost, "/payments/verify", bad, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = ts.verifyBody(models.ServiceTypeHall)
	bad["endTime"] = bad["startTime"]
	rec = ts.do(t, http.MethodPost, "/payments/verify", bad, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/payments/verify", ts.verifyBody(models.ServiceTypeHall), tokenFor(t, primitive.NewObjectID().Hex()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	forged := ts.verifyBody(models.ServiceTypeHall)
	forged["signature"] = strings.Repeat("ab", 32)
	rec = ts.do(t, http.MethodPost, "/payments/verify", forged, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"failure","message":"Invalid signature"}`, rec.Body.String())

	count, err := ts.repo.CountUnread(context.Background(), ts.customer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHealthRoute(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, rec.Body.String())
}

func TestWebSocketRoute_ReceivesPushesForJoinedRoom(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	room := ts.customer.ID.Hex()
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join", "data": room}))
	require.Eventually(t, func() bool { return ts.hub.RoomSize(room) == 1 }, 2*time.Second, 10*time.Millisecond)

	n := ts.seed(t, ts.customer.ID)
	rec := ts.do(t, http.MethodPut, "/notifications/"+n.ID.Hex()+"/read", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second realtime.Frame
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, realtime.EventNotification, first.Event)
	assert.Equal(t, realtime.EventNotificationUpdate, second.Event)
	var update realtime.NotificationUpdate
	require.NoError(t, json.Unmarshal(second.Data, &update))
	assert.Equal(t, n.ID.Hex(), update.ID)
	assert.True(t, update.IsRead)
}
