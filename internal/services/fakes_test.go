package services

import (
	"context"
	"sync"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/repository"
)

type publishCall struct {
	room    string
	event   string
	payload interface{}
}

// recordingPublisher stands in for the realtime hub.
type recordingPublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, room, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{room: room, event: event, payload: payload})
	return p.err
}

func (p *recordingPublisher) Calls() []publishCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishCall(nil), p.calls...)
}

func (p *recordingPublisher) CallsTo(room string) []publishCall {
	var out []publishCall
	for _, c := range p.Calls() {
		if c.room == room {
			out = append(out, c)
		}
	}
	return out
}

type failingCreateStore struct {
	*repository.MemoryNotificationRepository
	err error
}

func (s *failingCreateStore) Create(context.Context, *models.Notification) (*models.Notification, error) {
	return nil, s.err
}

type failingNotifications struct {
	attempts int
}

func (f *failingNotifications) CreateNotification(context.Context, *models.Notification) (*models.Notification, error) {
	f.attempts++
	return nil, assertErr
}

type fakeBookingStore struct {
	created []models.Booking
	err     error
}

func (s *fakeBookingStore) CreateBooking(_ context.Context, b *models.Booking) (*models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	b.ID = newID()
	s.created = append(s.created, *b)
	return b, nil
}

type staticVerifier bool

func (v staticVerifier) Verify(string, string, string) bool { return bool(v) }

type recordingMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	m.to = append(m.to, to)
	m.subject = subject
	m.body = body
	return m.err
}
