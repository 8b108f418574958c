package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwave/aiwave/internal/route"
	"github.com/aiwave/aiwave/internal/session"
)

// sessionMsg delivers a new session snapshot to the App.
type sessionMsg struct{ session session.Session }

// navigateMsg asks the App to go to a path through the guard.
type navigateMsg struct{ to route.Path }

// Sender is the part of *tea.Program the Bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge carries session changes and navigation requests from the auth
// layer into a running program. Producers never block on the program's
// event loop: messages are queued and forwarded by one goroutine, so the
// facade may be called from inside a tea.Cmd.
type Bridge struct {
	queue chan tea.Msg
	done  chan struct{}
	once  sync.Once
}

// NewBridge returns a bridge queueing up to size messages before producers
// wait for the program.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{
		queue: make(chan tea.Msg, size),
		done:  make(chan struct{}),
	}
}

// Navigate implements auth.Navigator.
func (b *Bridge) Navigate(to route.Path) {
	b.push(navigateMsg{to: to})
}

// Publish is a session.State subscriber.
func (b *Bridge) Publish(s session.Session) {
	b.push(sessionMsg{session: s})
}

func (b *Bridge) push(msg tea.Msg) {
	select {
	case b.queue <- msg:
	case <-b.done:
	}
}

// Attach starts forwarding queued messages to p, in order, until Close.
func (b *Bridge) Attach(p Sender) {
	go func() {
		for {
			select {
			case msg := <-b.queue:
				p.Send(msg)
			case <-b.done:
				return
			}
		}
	}()
}

// Close stops forwarding. Later pushes are dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
