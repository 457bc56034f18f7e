package notifyclient

import (
	"context"
	"errors"
	"sync"

	"github.com/Dias221467/EventEase/pkg/logger"
)

var ErrNotMounted = errors.New("cache is not mounted")

// Cache keeps one recipient's notification list and unread count in sync
// with the server while a view is mounted.
type Cache struct {
	client    *Client
	wsURL     string
	recipient string

	mu       sync.Mutex
	state    State
	onChange func(State)
	socket   *Socket
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewCache(client *Client, wsURL, recipient string) *Cache {
	return &Cache{client: client, wsURL: wsURL, recipient: recipient}
}

// OnChange registers a callback that receives every new state.
func (c *Cache) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Mount subscribes to pushes, loads the list and count, then applies pushes
// as they arrive. Pushes that raced the initial load are applied after it.
//
// The server does not acknowledge joins, so a notification created after
// Mount returns but before the join is processed is missed until the next
// Refresh.
func (c *Cache) Mount(ctx context.Context) error {
	socket, err := Dial(ctx, c.wsURL, c.recipient)
	if err != nil {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		socket.Close()
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.socket, c.cancel, c.done = socket, cancel, done
	c.mu.Unlock()

	go c.readLoop(loopCtx, socket, done)
	return nil
}

// Unmount closes the subscription and drops all state.
func (c *Cache) Unmount() {
	c.mu.Lock()
	socket, cancel, done := c.socket, c.cancel, c.done
	c.socket, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if socket != nil {
		cancel()
		socket.Close()
		<-done
	}

	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()
}

func (c *Cache) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh reloads the list and count from the server.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.client.List(ctx, c.recipient)
	if err != nil {
		return err
	}
	count, err := c.client.UnreadCount(ctx, c.recipient)
	if err != nil {
		return err
	}
	c.dispatch(Loaded{Items: items, UnreadCount: count})
	return nil
}

// MarkRead marks one notification read. Marking one the cache does not hold
// re-queries the unread count.
func (c *Cache) MarkRead(ctx context.Context, id string) error {
	if !c.mounted() {
		return ErrNotMounted
	}
	if err := c.client.MarkRead(ctx, id); err != nil {
		return err
	}
	return c.applyUpdate(ctx, Updated{ID: id, IsRead: true})
}

func (c *Cache) MarkAllRead(ctx context.Context) error {
	if !c.mounted() {
		return ErrNotMounted
	}
	if err := c.client.MarkAllRead(ctx, c.recipient); err != nil {
		return err
	}
	c.dispatch(AllRead{})
	return nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if !c.mounted() {
		return ErrNotMounted
	}
	if err := c.client.Delete(ctx, id); err != nil {
		return err
	}
	c.dispatch(Deleted{ID: id})
	return c.refreshCount(ctx)
}

// applyUpdate dispatches u. The cache only holds the newest items, so an
// update for any other notification moves the count by re-querying it.
func (c *Cache) applyUpdate(ctx context.Context, u Updated) error {
	held := c.holds(u.ID)
	c.dispatch(u)
	if held {
		return nil
	}
	return c.refreshCount(ctx)
}

func (c *Cache) holds(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return indexOf(c.state.Items, id) >= 0
}

func (c *Cache) mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket != nil
}

func (c *Cache) refreshCount(ctx context.Context) error {
	count, err := c.client.UnreadCount(ctx, c.recipient)
	if err != nil {
		return err
	}
	c.dispatch(CountRefreshed{Count: count})
	return nil
}

func (c *Cache) dispatch(e Event) {
	c.mu.Lock()
	c.state = Reduce(c.state, e)
	state, fn := c.state, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

func (c *Cache) readLoop(ctx context.Context, socket *Socket, done chan struct{}) {
	defer close(done)
	for {
		ev, err := socket.Next()
		if err != nil {
			if ctx.Err() == nil {
				logger.Log.WithError(err).Warn("Notification subscription closed")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var refreshErr error
		switch ev := ev.(type) {
		case Updated:
			refreshErr = c.applyUpdate(ctx, ev)
		case Deleted:
			c.dispatch(ev)
			refreshErr = c.refreshCount(ctx)
		default:
			c.dispatch(ev)
		}
		if refreshErr != nil && ctx.Err() == nil {
			logger.Log.WithError(refreshErr).Warn("Failed to refresh unread count")
		}
	}
}
