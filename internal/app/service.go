// Package service owns the browser sessions: one loop, one document and
// one active view-model per session.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillmonitor/internal/adapters/mq/queue"
	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	"github.com/okian/skillmonitor/internal/config"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/fetch"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/internal/viewmodel/dashboard"
	"github.com/okian/skillmonitor/internal/viewmodel/market"
	"github.com/okian/skillmonitor/internal/viewmodel/profile"
	"github.com/okian/skillmonitor/internal/viewmodel/registration"
	"github.com/okian/skillmonitor/pkg/logger"
	"github.com/okian/skillmonitor/pkg/metrics"
)

// Actions handled by the session itself rather than the view-model.
const (
	ActionTheme   = "theme"
	ActionDismiss = "alerts/dismiss"
)

// Update is what an action or a timer changed on a page.
type Update struct {
	Patches []dom.Patch `json:"patches"`
	// Theme is set when the action switched the theme.
	Theme page.Theme `json:"theme,omitempty"`
}

// Service implements the session dependencies of the HTTP layer.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	backend fetch.Client

	// Configuration
	queueSize     int
	settleTimeout time.Duration
	alertTTL      time.Duration
	pollInterval  time.Duration
	sessionTTL    time.Duration
	sweepInterval time.Duration
	maxSessions   int

	// State
	started bool
	stopCh  chan struct{}
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBackend sets the client every session fetches through.
func WithBackend(c fetch.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.backend = c
		}
	}
}

// WithConfig applies the session settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithQueueSize(cfg.LoopQueueSize)(s)
		WithSettleTimeout(cfg.SettleTimeout())(s)
		WithAlertTTL(cfg.AlertTTL())(s)
		WithPollInterval(cfg.PollInterval())(s)
		WithSessionTTL(cfg.SessionTTL(), cfg.SweepInterval())(s)
		WithMaxSessions(cfg.MaxSessions)(s)
	}
}

// WithQueueSize sets the task queue capacity of each session loop.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSettleTimeout bounds how long a request waits for network completions
// before answering with what is rendered so far.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.settleTimeout = d
		}
	}
}

// WithAlertTTL sets how long alerts stay up.
func WithAlertTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.alertTTL = d
		}
	}
}

// WithPollInterval sets the dashboard re-poll period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithSessionTTL sets the idle time after which sessions are swept and how
// often the sweep runs.
func WithSessionTTL(ttl, every time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
		if every > 0 {
			s.sweepInterval = every
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:      make(map[string]*Session),
		queueSize:     256,
		settleTimeout: 3 * time.Second,
		alertTTL:      5 * time.Second,
		pollInterval:  30 * time.Second,
		sessionTTL:    30 * time.Minute,
		sweepInterval: time.Minute,
		maxSessions:   1000,
		stopCh:        make(chan struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the idle-session sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.backend == nil {
		return fmt.Errorf("%w: no backend client", ErrNotStarted)
	}
	s.logger = s.logger.Named("sessions")

	go s.sweepLoop(s.stopCh)

	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop closes every session and stops the sweeper.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.started = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.settleTimeout)
	defer cancel()
	for _, sess := range sessions {
		if err := sess.close(ctx); err != nil {
			s.logger.Warn(ctx, "session did not stop cleanly", logger.String("session", sess.id), logger.Error(err))
		}
	}
	metrics.UpdateActiveSessions(0)
	s.logger.Info(ctx, "session service stopped", logger.Int("closed", len(sessions)))
}

// Create opens a session with the given theme.
func (s *Service) Create(ctx context.Context, theme page.Theme) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if len(s.sessions) >= s.maxSessions {
		metrics.RecordSessionRejected()
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	sess := &Session{
		id:       id,
		signal:   make(chan struct{}, 1),
		lastSeen: s.now(),
		theme:    page.ParseTheme(string(theme)),
	}
	sess.loop = worker.NewLoop(context.WithoutCancel(ctx),
		queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize)),
		worker.WithName("session-"+id[:8]),
		worker.WithLogger(s.logger),
	)
	sess.loop.Start()
	s.sessions[id] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session created", logger.String("session", id))
	return sess, nil
}

// Session looks up a live session and marks it as used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownSession
	}
	sess.touch(s.now())
	return sess, nil
}

// Close ends a session.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}
	metrics.UpdateActiveSessions(n)
	return sess.close(ctx)
}

// Enter replaces the session's page with a fresh one for v, starts its
// view-model and returns the page HTML once the initial loads settled.
func (s *Service) Enter(ctx context.Context, sess *Session, v page.View, params url.Values) (string, error) {
	sess.touch(s.now())
	theme := sess.Theme()

	err := sess.loop.Call(ctx, func(lctx context.Context) {
		sess.teardown()
		doc := dom.New(page.Build(v, theme), dom.WithSignal(sess.signal))
		presenter := notify.New(doc.Region(page.IDAlerts), sess.loop, notify.WithAlertTTL(s.alertTTL))
		env := viewmodel.Env{
			Doc:    doc,
			Sched:  sess.loop,
			Fetch:  fetch.New(s.backend, sess.loop, presenter),
			Notify: presenter,
			Logger: s.logger.Named(string(v)),
			Params: params,
		}
		sess.doc = doc
		sess.notify = presenter
		sess.model = s.build(v, env)
		sess.mu.Lock()
		sess.view = v
		sess.mu.Unlock()
		sess.model.Start(lctx)
	})
	if err != nil {
		return "", fmt.Errorf("entering %s: %w", v, err)
	}
	metrics.RecordViewEntered(string(v))
	s.settle(ctx, sess)

	var out string
	err = sess.loop.Call(ctx, func(context.Context) {
		out = sess.doc.HTML()
		sess.doc.Flush()
	})
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", v, err)
	}
	return out, nil
}

func (s *Service) build(v page.View, env viewmodel.Env) viewmodel.Model {
	switch v {
	case page.ViewRegistration:
		return registration.New(env)
	case page.ViewProfile:
		return profile.New(env)
	case page.ViewMarket:
		return market.New(env)
	default:
		return dashboard.New(env, dashboard.WithPollInterval(s.pollInterval))
	}
}

// Dispatch runs action on the session's page and returns what changed.
func (s *Service) Dispatch(ctx context.Context, sess *Session, action string, form url.Values) (Update, error) {
	sess.touch(s.now())

	var (
		out    Update
		runErr error
	)
	err := sess.loop.Call(ctx, func(lctx context.Context) {
		if sess.doc == nil || sess.model == nil {
			runErr = ErrNoView
			return
		}
		switch action {
		case ActionTheme:
			out.Theme = s.toggleTheme(sess)
		case ActionDismiss:
			sess.notify.Dismiss(form.Get(page.FieldID))
		default:
			runErr = sess.model.Handle(lctx, action, form)
		}
	})
	if err != nil {
		return Update{}, fmt.Errorf("dispatching %s: %w", action, err)
	}
	if runErr != nil {
		return Update{}, runErr
	}

	s.settle(ctx, sess)
	patches, err := s.Flush(ctx, sess)
	if err != nil {
		return Update{}, err
	}
	out.Patches = patches
	return out, nil
}

func (s *Service) toggleTheme(sess *Session) page.Theme {
	sess.mu.Lock()
	sess.theme = sess.theme.Toggle()
	theme := sess.theme
	sess.mu.Unlock()

	sess.doc.Region(page.IDTheme).Replace(page.ThemeToggle(theme).FirstChild)
	return theme
}

// Flush collects the pending patches of the session's page.
func (s *Service) Flush(ctx context.Context, sess *Session) ([]dom.Patch, error) {
	patches := []dom.Patch{}
	err := sess.loop.Call(ctx, func(context.Context) {
		if sess.doc != nil {
			patches = append(patches, sess.doc.Flush()...)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("flushing session: %w", err)
	}
	return patches, nil
}

// settle waits for in-flight network work, bounded by the settle timeout.
// A timeout is not an error: the rest arrives over the event stream.
func (s *Service) settle(ctx context.Context, sess *Session) {
	sctx, cancel := context.WithTimeout(ctx, s.settleTimeout)
	defer cancel()
	if err := sess.loop.Settle(sctx); err != nil && !errors.Is(err, worker.ErrStopped) {
		s.logger.Debug(ctx, "answering before settle", logger.String("session", sess.id), logger.Error(err))
	}
}

// Render enters v in a throwaway session and returns the page HTML.
func (s *Service) Render(ctx context.Context, v page.View, params url.Values) (string, error) {
	sess, err := s.Create(ctx, page.ThemeLight)
	if err != nil {
		return "", err
	}
	defer func() { _ = s.Close(context.WithoutCancel(ctx), sess.id) }()
	return s.Enter(ctx, sess, v, params)
}

func (s *Service) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep closes sessions idle for longer than the session TTL and reports
// how many were closed.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.sessionTTL)

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range idle {
		if err := sess.close(ctx); err != nil {
			s.logger.Warn(ctx, "evicted session did not stop cleanly", logger.String("session", sess.id), logger.Error(err))
		}
		metrics.RecordSessionEvicted()
	}
	if len(idle) > 0 {
		metrics.UpdateActiveSessions(n)
		s.logger.Info(ctx, "idle sessions evicted", logger.Int("evicted", len(idle)), logger.Int("remaining", n))
	}
	return len(idle)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := map[string]int{}
	for _, sess := range s.sessions {
		if v := sess.View(); v != "" {
			views[string(v)]++
		}
	}
	stats := map[string]interface{}{
		"started":     s.started,
		"sessions":    len(s.sessions),
		"maxSessions": s.maxSessions,
		"sessionTTL":  s.sessionTTL.String(),
		"queueSize":   s.queueSize,
		"views":       views,
	}
	metrics.UpdateActiveSessions(len(s.sessions))
	return stats
}
