package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/viewmodel"
)

// Session is one browser's view state. Everything below the mutex-guarded
// fields is owned by the session loop.
type Session struct {
	id     string
	loop   *worker.Loop
	signal chan struct{}

	mu       sync.Mutex
	lastSeen time.Time
	theme    page.Theme
	view     page.View

	doc    *dom.Document
	model  viewmodel.Model
	notify *notify.Presenter
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Theme returns the session's theme.
func (s *Session) Theme() page.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// View returns the view entered last.
func (s *Session) View() page.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Changed is signalled whenever a region of the session's page changes.
func (s *Session) Changed() <-chan struct{} { return s.signal }

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// teardown disposes the active view-model. Loop only.
func (s *Session) teardown() {
	if s.model != nil {
		s.model.Dispose()
		s.model = nil
	}
	if s.notify != nil {
		s.notify.Close()
		s.notify = nil
	}
}

func (s *Session) close(ctx context.Context) error {
	_ = s.loop.Call(ctx, func(context.Context) { s.teardown() })
	return s.loop.Stop(ctx)
}
