package notifyclient

import "github.com/Dias221467/EventEase/internal/models"

// MaxItems mirrors the server's list cap.
const MaxItems = 50

// State is what a notification view renders. Items are newest first.
type State struct {
	Items       []models.Notification
	UnreadCount int64
	Loaded      bool
}

// Event is anything that changes State: a push from the server, the result
// of the user's own action, or an authoritative fetch.
type Event interface {
	isEvent()
}

// Loaded replaces the state with a fresh list and count.
type Loaded struct {
	Items       []models.Notification
	UnreadCount int64
}

type Created struct {
	Notification models.Notification
}

type Updated struct {
	ID     string
	IsRead bool
}

type AllRead struct{}

type Deleted struct {
	ID string
}

// CountRefreshed carries a re-queried unread count.
type CountRefreshed struct {
	Count int64
}

func (Loaded) isEvent()         {}
func (Created) isEvent()        {}
func (Updated) isEvent()        {}
func (AllRead) isEvent()        {}
func (Deleted) isEvent()        {}
func (CountRefreshed) isEvent() {}

// Reduce returns the state after applying e. It never mutates s.
//
// The unread count only moves when a cached item is seen changing read state,
// so applying the same event twice (a local action and then its echo from the
// server) changes nothing the second time. Deletions, and updates to items
// the state does not hold, leave the count alone; the caller re-queries it.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Loaded:
		return State{
			Items:       capItems(append([]models.Notification(nil), ev.Items...)),
			UnreadCount: nonNegative(ev.UnreadCount),
			Loaded:      true,
		}

	case Created:
		if indexOf(s.Items, ev.Notification.ID.Hex()) >= 0 {
			return s
		}
		items := make([]models.Notification, 0, len(s.Items)+1)
		items = append(items, ev.Notification)
		items = append(items, s.Items...)
		next := State{Items: capItems(items), UnreadCount: s.UnreadCount, Loaded: s.Loaded}
		if !ev.Notification.IsRead {
			next.UnreadCount++
		}
		return next

	case Updated:
		i := indexOf(s.Items, ev.ID)
		if i < 0 || s.Items[i].IsRead == ev.IsRead {
			return s
		}
		items := append([]models.Notification(nil), s.Items...)
		items[i].IsRead = ev.IsRead
		next := State{Items: items, UnreadCount: s.UnreadCount, Loaded: s.Loaded}
		if ev.IsRead {
			next.UnreadCount = nonNegative(next.UnreadCount - 1)
		} else {
			next.UnreadCount++
		}
		return next

	case AllRead:
		items := append([]models.Notification(nil), s.Items...)
		for i := range items {
			items[i].IsRead = true
		}
		return State{Items: items, UnreadCount: 0, Loaded: s.Loaded}

	case Deleted:
		i := indexOf(s.Items, ev.ID)
		if i < 0 {
			return s
		}
		items := make([]models.Notification, 0, len(s.Items)-1)
		items = append(items, s.Items[:i]...)
		items = append(items, s.Items[i+1:]...)
		return State{Items: items, UnreadCount: s.UnreadCount, Loaded: s.Loaded}

	case CountRefreshed:
		return State{Items: s.Items, UnreadCount: nonNegative(ev.Count), Loaded: s.Loaded}
	}
	return s
}

func indexOf(items []models.Notification, id string) int {
	for i := range items {
		if items[i].ID.Hex() == id {
			return i
		}
	}
	return -1
}

func capItems(items []models.Notification) []models.Notification {
	if len(items) > MaxItems {
		return items[:MaxItems]
	}
	return items
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
