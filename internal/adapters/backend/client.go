// Package backend is the HTTP client facade over the skills JSON API.
//
// Every call yields a Result; no call returns an error or panics. Transport
// failures (network errors, timeouts, non-JSON bodies, bodies without a
// boolean success flag) are folded into a Result of KindTransport.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/skillmonitor/pkg/logger"
	"github.com/okian/skillmonitor/pkg/metrics"
)

// Backend endpoints.
const (
	PathDashboard = "/api/dashboard-data"
	PathSkills    = "/api/skills-lista"
	PathRegister  = "/api/registrar-usuario"
	PathUsers     = "/api/usuarios"
	PathMarket    = "/api/analisis-mercado"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20

	// TransportMessage is the Result message of every transport failure.
	TransportMessage = "Error de conexión"
)

// Kind classifies how an exchange ended.
type Kind int

const (
	// KindOK means the backend answered with success:true.
	KindOK Kind = iota
	// KindBackend means the backend answered with success:false.
	KindBackend
	// KindTransport means no usable answer was received.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindBackend:
		return "backend_error"
	default:
		return "transport_error"
	}
}

// Result is the uniform outcome of a backend exchange.
type Result struct {
	Success bool
	Message string
	Kind    Kind
	// Body is the raw JSON answer; nil on transport failure. It may be shared
	// between callers and must not be modified.
	Body []byte
}

func transportFailure() Result {
	return Result{Success: false, Message: TransportMessage, Kind: KindTransport}
}

// Client performs exchanges against one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	group   singleflight.Group
	logger  logger.Logger
}

// NewClient creates a Client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches path. Identical GETs in flight at the same time share one
// exchange.
func (c *Client) Get(ctx context.Context, path string) Result {
	ch := c.group.DoChan(path, func() (any, error) {
		// The shared exchange must not die with the first caller.
		return c.exchange(context.WithoutCancel(ctx), http.MethodGet, path, nil), nil
	})

	select {
	case res := <-ch:
		r, _ := res.Val.(Result)
		return r
	case <-ctx.Done():
		return transportFailure()
	}
}

// Post sends body as JSON to path.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	payload, err := json.Marshal(body)
	if err != nil {
		c.logger.Error(ctx, "failed to marshal request body", logger.String("path", path), logger.Error(err))
		return transportFailure()
	}
	return c.exchange(ctx, http.MethodPost, path, payload)
}

func (c *Client) exchange(ctx context.Context, method, path string, payload []byte) Result {
	start := time.Now()
	res := c.do(ctx, method, path, payload)

	metrics.RecordBackendRequest(path, res.Kind.String())
	metrics.RecordBackendLatency(path, float64(time.Since(start).Milliseconds()))
	if res.Kind == KindTransport {
		metrics.RecordErrorByType("backend_transport", "high")
	}
	return res
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		c.logger.Error(ctx, "failed to create request", logger.String("path", path), logger.Error(err))
		return transportFailure()
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "backend unreachable", logger.String("method", method), logger.String("path", path), logger.Error(err))
		return transportFailure()
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn(ctx, "failed to read backend body", logger.String("path", path), logger.Error(err))
		return transportFailure()
	}

	if err := validate(schemaEnvelope, data); err != nil {
		c.logger.Warn(ctx, "backend answered without an envelope",
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.Error(err))
		return transportFailure()
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return transportFailure()
	}

	res := Result{Success: env.Success, Message: env.Message, Kind: KindOK, Body: data}
	if !env.Success {
		res.Kind = KindBackend
		c.logger.Info(ctx, "backend reported failure",
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("message", env.Message))
	}
	return res
}

// String helps when a Result ends up in a log line.
func (r Result) String() string {
	return fmt.Sprintf("%s success=%t message=%q", r.Kind, r.Success, r.Message)
}
