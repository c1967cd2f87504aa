// Package viewmodeltest runs view-models against a real session loop and a
// scripted backend.
package viewmodeltest

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/adapters/mq/queue"
	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/fetch"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/pkg/logger"
)

const settleTimeout = 2 * time.Second

// OK is a success Result carrying body.
func OK(body string) backend.Result {
	return backend.Result{Success: true, Kind: backend.KindOK, Body: []byte(body)}
}

// Failed is a backend-reported failure.
func Failed(message string) backend.Result {
	return backend.Result{Kind: backend.KindBackend, Message: message, Body: []byte(`{"success":false}`)}
}

// Transport is a transport failure.
func Transport() backend.Result {
	return backend.Result{Kind: backend.KindTransport, Message: backend.TransportMessage}
}

// Backend answers with the Result set per path. The Result is taken when
// the call starts; a held path blocks until released.
type Backend struct {
	mu      sync.Mutex
	results map[string]backend.Result
	gates   map[string]chan struct{}
	calls   []string
	bodies  []any
}

// NewBackend creates a Backend that fails every path in transport until Set.
func NewBackend() *Backend {
	return &Backend{results: map[string]backend.Result{}, gates: map[string]chan struct{}{}}
}

// Set scripts the answer of path.
func (b *Backend) Set(path string, r backend.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[path] = r
}

// Hold makes calls to path started from now on wait for release.
func (b *Backend) Hold(path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[path] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Open stops holding path for calls started from now on.
func (b *Backend) Open(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.gates, path)
}

// Calls returns "METHOD path" for every call so far.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Bodies returns the bodies of every Post so far.
func (b *Backend) Bodies() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]any(nil), b.bodies...)
}

func (b *Backend) Get(ctx context.Context, path string) backend.Result {
	return b.answer(ctx, "GET", path, nil)
}

func (b *Backend) Post(ctx context.Context, path string, body any) backend.Result {
	return b.answer(ctx, "POST", path, body)
}

func (b *Backend) answer(ctx context.Context, method, path string, body any) backend.Result {
	b.mu.Lock()
	b.calls = append(b.calls, method+" "+path)
	if body != nil {
		b.bodies = append(b.bodies, body)
	}
	res, ok := b.results[path]
	gate := b.gates[path]
	b.mu.Unlock()

	if !ok {
		res = Transport()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Transport()
		}
	}
	return res
}

// Harness is one session page with a running loop.
type Harness struct {
	Loop    *worker.Loop
	Doc     *dom.Document
	Notify  *notify.Presenter
	Fetch   *fetch.Fetcher
	Backend *Backend
	Params  url.Values
}

// New builds the page of v and starts its loop.
func New(v page.View, params url.Values) *Harness {
	loop := worker.NewLoop(context.Background(), queue.NewInMemoryQueue())
	loop.Start()
	doc := dom.New(page.Build(v, page.ThemeLight))
	presenter := notify.New(doc.Region(page.IDAlerts), loop)
	be := NewBackend()
	return &Harness{
		Loop:    loop,
		Doc:     doc,
		Notify:  presenter,
		Fetch:   fetch.New(be, loop, presenter),
		Backend: be,
		Params:  params,
	}
}

// Env is the view-model environment of the harness.
func (h *Harness) Env() viewmodel.Env {
	return viewmodel.Env{
		Doc:    h.Doc,
		Sched:  h.Loop,
		Fetch:  h.Fetch,
		Notify: h.Notify,
		Logger: logger.Nop(),
		Params: h.Params,
	}
}

// Run executes fn on the loop and waits for it, without settling.
func (h *Harness) Run(fn func(ctx context.Context)) error {
	return h.Loop.Call(context.Background(), fn)
}

// Do executes fn on the loop and waits until every follow-up is done.
func (h *Harness) Do(fn func(ctx context.Context)) error {
	if err := h.Run(fn); err != nil {
		return err
	}
	return h.Settle()
}

// Settle waits for outstanding network completions.
func (h *Harness) Settle() error {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	return h.Loop.Settle(ctx)
}

// Page parses the current document as seen from the loop.
func (h *Harness) Page() *goquery.Document {
	var out string
	_ = h.Run(func(context.Context) { out = h.Doc.HTML() })
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		panic(err)
	}
	return doc
}

// Text is the trimmed text of the element with id.
func (h *Harness) Text(id string) string {
	return strings.TrimSpace(h.Page().Find("#" + id).Text())
}

// Hidden reports whether the element with id carries the hidden attribute.
func (h *Harness) Hidden(id string) bool {
	_, ok := h.Page().Find("#" + id).Attr("hidden")
	return ok
}

// Alert is the text and classes of the alert on screen, if any.
func (h *Harness) Alert() (text, class string) {
	sel := h.Page().Find("#" + page.IDAlerts + " .alert")
	class, _ = sel.Attr("class")
	return strings.TrimSpace(sel.Text()), class
}

// Eventually polls cond on the loop until it holds or the settle timeout
// passes.
func (h *Harness) Eventually(cond func() bool) bool {
	deadline := time.Now().Add(settleTimeout)
	for time.Now().Before(deadline) {
		ok := false
		_ = h.Run(func(context.Context) { ok = cond() })
		if ok {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Close stops the loop.
func (h *Harness) Close() {
	_ = h.Run(func(context.Context) { h.Notify.Close() })
	_ = h.Loop.Stop(context.Background())
}
