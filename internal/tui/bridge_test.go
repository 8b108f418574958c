package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwave/aiwave/internal/auth"
	"github.com/aiwave/aiwave/internal/route"
	"github.com/aiwave/aiwave/internal/session"
	"github.com/aiwave/aiwave/internal/tokenstore"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func recv(t *testing.T, c chanSender) tea.Msg {
	t.Helper()
	select {
	case msg := <-c:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a forwarded message")
	}
	return nil
}

func TestBridgeForwardsInOrder(t *testing.T) {
	b := NewBridge(8)
	defer b.Close()

	// Queued before the program exists.
	b.Publish(session.Session{Phase: session.PhaseAnonymous, Generation: 1})
	b.Navigate(route.SignIn)

	out := make(chanSender, 8)
	b.Attach(out)

	if msg, ok := recv(t, out).(sessionMsg); !ok || msg.session.Generation != 1 {
		t.Errorf("first message = %#v, want session generation 1", msg)
	}
	if msg, ok := recv(t, out).(navigateMsg); !ok || msg.to != route.SignIn {
		t.Errorf("second message = %#v, want navigate to sign-in", msg)
	}
}

func TestBridgeCloseUnblocksProducers(t *testing.T) {
	b := NewBridge(1)
	b.Close()
	b.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Navigate(route.Home)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("push blocked after Close")
	}
}

func TestBridgeWithFacade(t *testing.T) {
	b := NewBridge(0)
	defer b.Close()
	out := make(chanSender, 8)
	b.Attach(out)

	state := session.NewState()
	state.Subscribe(b.Publish)
	f := auth.New(tokenstore.NewMemoryStore(""), state, nil,
		auth.WithProfileLoading(false), auth.WithNavigator(b))

	if err := f.Login("abc"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	s, ok := recv(t, out).(sessionMsg)
	if !ok || s.session.Token != "abc" {
		t.Fatalf("first message = %#v, want the new session", s)
	}
	n, ok := recv(t, out).(navigateMsg)
	if !ok || n.to != route.Home {
		t.Errorf("second message = %#v, want navigate home", n)
	}
}
