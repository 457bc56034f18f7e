package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/EventEase/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryNotificationRepository keeps notifications in process memory. It backs
// STORE_DRIVER=memory and the tests.
type MemoryNotificationRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[primitive.ObjectID]*memoryNotification
	now   func() time.Time
}

type memoryNotification struct {
	seq   int64
	notif models.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{
		items: make(map[primitive.ObjectID]*memoryNotification),
		now:   time.Now,
	}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, notif *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = r.now().UTC()
	r.items[notif.ID] = &memoryNotification{seq: r.seq, notif: clone(notif)}

	return notif, nil
}

func (r *MemoryNotificationRepository) ListByRecipient(_ context.Context, recipient primitive.ObjectID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	matched := make([]*memoryNotification, 0)
	for _, item := range r.items {
		if item.notif.Recipient == recipient {
			matched = append(matched, item)
		}
	}
	r.mu.RUnlock()

	// Newest first; equal timestamps fall back to insertion order.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.notif.CreatedAt.Equal(b.notif.CreatedAt) {
			return a.notif.CreatedAt.After(b.notif.CreatedAt)
		}
		return a.seq > b.seq
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]models.Notification, 0, len(matched))
	for _, item := range matched {
		out = append(out, clone(&item.notif))
	}
	return out, nil
}

func (r *MemoryNotificationRepository) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, item := range r.items {
		if item.notif.Recipient == recipient && !item.notif.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.notif.IsRead = true
	out := clone(&item.notif)
	return &out, nil
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	for _, item := range r.items {
		if item.notif.Recipient == recipient && !item.notif.IsRead {
			item.notif.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func (r *MemoryNotificationRepository) Delete(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.items, id)
	out := clone(&item.notif)
	return &out, nil
}

// clone copies a notification deeply enough that callers cannot mutate stored state.
func clone(n *models.Notification) models.Notification {
	out := *n
	if n.Metadata != nil {
		md := *n.Metadata
		if md.Amount != nil {
			amount := *md.Amount
			md.Amount = &amount
		}
		if md.PackageDetails != nil {
			pkg := *md.PackageDetails
			md.PackageDetails = &pkg
		}
		out.Metadata = &md
	}
	return out
}
