// Package notify implements the client's transient notification slot: at most
// one notification is visible, a new one replaces the current one, and it is
// hidden when its timer fires or the user closes it.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// DefaultAutoHide is used when a notification does not set AutoHide.
const DefaultAutoHide = 3000 * time.Millisecond

// Reason tells Dismiss what triggered it.
type Reason int

const (
	// Timeout is sent by the auto-hide timer.
	Timeout Reason = iota
	// Close is an explicit user close action.
	Close
	// Clickaway is an incidental pointer event outside the notification; ignored.
	Clickaway
)

// Notification is a transient message.
type Notification struct {
	ID       string
	Message  string
	Severity Severity
	AutoHide time.Duration
}

// Notifier is what controllers use to raise notifications.
type Notifier interface {
	Notify(n Notification)
}

type stopper interface {
	Stop() bool
}

// Channel holds the single live notification.
type Channel struct {
	mu         sync.Mutex
	current    Notification
	visible    bool
	generation uint64
	timer      stopper
	listener   func(Notification, bool)

	afterFunc func(time.Duration, func()) stopper
}

// NewChannel returns an empty channel. listener, if non-nil, is called after
// every change with the current notification and whether it is visible.
func NewChannel(listener func(Notification, bool)) *Channel {
	return &Channel{
		listener: listener,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Notify shows n, replacing any visible notification and restarting the
// auto-hide timer. Severity defaults to Info and AutoHide to DefaultAutoHide.
func (c *Channel) Notify(n Notification) {
	if n.Severity == "" {
		n.Severity = Info
	}
	if n.AutoHide <= 0 {
		n.AutoHide = DefaultAutoHide
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	gen := c.generation
	c.current = n
	c.visible = true
	c.timer = c.afterFunc(n.AutoHide, func() { c.expire(gen) })
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(n, true)
	}
}

// expire hides the notification of generation gen if it is still current.
func (c *Channel) expire(gen uint64) {
	c.hide(func() bool { return gen == c.generation })
}

// Dismiss hides the current notification unless reason is Clickaway.
func (c *Channel) Dismiss(reason Reason) {
	if reason == Clickaway {
		return
	}
	c.hide(func() bool { return true })
}

// hide makes the notification invisible when ok, evaluated under the lock, holds.
func (c *Channel) hide(ok func() bool) {
	c.mu.Lock()
	if !c.visible || !ok() {
		c.mu.Unlock()
		return
	}
	c.visible = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	n := c.current
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(n, false)
	}
}

// Current returns the last notification and whether it is visible.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.visible
}
