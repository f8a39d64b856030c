// Package gateway is the client side of the Sync Gateway HTTP contract. It is
// the only place outside the server that sees the wire format: deals are
// converted with the wire mapping table on the way in and out.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/resilience"
	"github.com/skyaboveme/yourgency/internal/wire"
)

const serviceName = "sync-gateway"

var tracer = otel.Tracer("gateway")

// Client talks to the Sync Gateway. It satisfies pipeline.Store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	log        *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the gateway at baseURL (e.g. http://localhost:8080).
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		log:        log,
	}
}

// LoginResult is the body of POST /api/login.
type LoginResult struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Tokens  struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"tokens"`
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Tokens.AccessToken)
	return &res, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoadDeals fetches the full collection. The gateway answers [] when its read
// fails, so an empty result is not proof of an empty store.
func (c *Client) LoadDeals(ctx context.Context) ([]models.Deal, error) {
	var records []wire.Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/opportunities", nil, &records); err != nil {
		return nil, err
	}
	deals, err := wire.ToDeals(records)
	if err != nil {
		return nil, &models.ErrExternalService{Service: serviceName, Err: err}
	}
	return deals, nil
}

// SaveDeals bulk-upserts the entire collection. Deals absent from the slice
// are not deleted on the server.
func (c *Client) SaveDeals(ctx context.Context, deals []models.Deal) error {
	var res wire.UpsertResponse
	if err := c.do(ctx, http.MethodPut, "/api/opportunities", wire.FromDeals(deals), &res); err != nil {
		return err
	}
	if !res.Success {
		return &models.ErrExternalService{Service: serviceName, Err: errors.New("bulk upsert not acknowledged")}
	}
	return nil
}

// CreateDeal inserts exactly one deal (no upsert) and returns it as stored.
func (c *Client) CreateDeal(ctx context.Context, d models.Deal) (models.Deal, error) {
	var out wire.Opportunity
	if err := c.do(ctx, http.MethodPost, "/api/opportunities", wire.FromDeal(d), &out); err != nil {
		return models.Deal{}, err
	}
	created, err := wire.ToDeal(out)
	if err != nil {
		return models.Deal{}, &models.ErrExternalService{Service: serviceName, Err: err}
	}
	return created, nil
}

func (c *Client) ScoreLead(ctx context.Context, req models.ScoreRequest) (*models.LeadScore, error) {
	var out models.LeadScore
	if err := c.do(ctx, http.MethodPost, "/api/ai/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	var out models.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/ai/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Brief(ctx context.Context) (*models.Brief, error) {
	var out models.Brief
	if err := c.do(ctx, http.MethodGet, "/api/ai/brief", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Settings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveSettings(ctx context.Context, s models.Settings) error {
	return c.do(ctx, http.MethodPost, "/api/config", s, nil)
}

func (c *Client) Summary(ctx context.Context) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodGet, "/api/reports/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// do runs one JSON request inside the breaker with retry. 4xx answers are not
// retried and do not count against the breaker.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.route", path))

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		payload = b
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return c.roundTrip(ctx, method, path, payload, out)
		})
	})
	if err != nil {
		endWithError(span, err)
		var unauth *models.ErrUnauthorized
		var valErr *models.ErrValidation
		var nf *models.ErrNotFound
		if errors.As(err, &unauth) || errors.As(err, &valErr) || errors.As(err, &nf) {
			return err
		}
		c.log.Warn("gateway: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &models.ErrExternalService{Service: serviceName, Err: err}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("create http request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http call to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
			eb.Error = strings.TrimSpace(string(raw))
		}
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return resilience.Permanent(&models.ErrUnauthorized{Message: eb.Error})
		case resp.StatusCode == http.StatusNotFound:
			return resilience.Permanent(&models.ErrNotFound{Resource: "route", ID: path})
		case resp.StatusCode == http.StatusBadRequest:
			return resilience.Permanent(&models.ErrValidation{Field: "body", Message: eb.Error})
		case resp.StatusCode < 500:
			return resilience.Permanent(fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, eb.Error))
		default:
			return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, eb.Error)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
