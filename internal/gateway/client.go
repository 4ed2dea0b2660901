// Package gateway is the HTTP client for the events API. Every non-2xx
// response is classified into a fault.Error before it leaves this package.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/eventdesk/internal/fault"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/metrics"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

type Client struct {
	// baseURL is the events API root, without a trailing slash.
	baseURL string

	// token is sent as a bearer token on every call.
	token string

	// hc is the http client.
	hc *http.Client

	log zerolog.Logger
}

// New creates a client without credentials.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log.WithComponent("gateway"),
	}
}

// WithToken returns a copy of c that authenticates as the token's holder.
// The underlying http client is shared.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// ListEvents returns every event the caller may see.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, "list_events", http.MethodGet, "/events/getAllEvents", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListMyEvents returns the events the caller participates in.
func (c *Client) ListMyEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, "list_my_events", http.MethodGet, "/events/my-events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListPublicEvents returns the events shown to visitors.
func (c *Client) ListPublicEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, "list_public_events", http.MethodGet, "/events/public", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, "get_event", http.MethodGet, "/events/"+url.PathEscape(id), nil, &ev)
	return ev, err
}

// CreateEvent creates an event and returns it with its server-assigned id.
func (c *Client) CreateEvent(ctx context.Context, form model.EventForm) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, "create_event", http.MethodPost, "/events", form, &ev)
	return ev, err
}

// UpdateEvent replaces the event's fields with form.
func (c *Client) UpdateEvent(ctx context.Context, id string, form model.EventForm) error {
	return c.do(ctx, "update_event", http.MethodPut, "/events/"+url.PathEscape(id), form, nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, "delete_event", http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddParticipant(ctx context.Context, eventID, userID string, role model.Role) error {
	path := participantPath(eventID, userID) + "?" + url.Values{"role": {string(role)}}.Encode()
	return c.do(ctx, "add_participant", http.MethodPost, path, nil, nil)
}

func (c *Client) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	return c.do(ctx, "remove_participant", http.MethodDelete, participantPath(eventID, userID), nil, nil)
}

func (c *Client) ChangeParticipantRole(ctx context.Context, eventID, userID string, role model.Role) error {
	path := participantPath(eventID, userID) + "/role?" + url.Values{"newRole": {string(role)}}.Encode()
	return c.do(ctx, "change_participant_role", http.MethodPut, path, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, "list_users", http.MethodGet, "/user", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func participantPath(eventID, userID string) string {
	return "/events/" + url.PathEscape(eventID) + "/participants/" + url.PathEscape(userID)
}

// do performs one call. in is JSON-encoded when non-nil; out is decoded from
// a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = fault.KindOf(err).String()
		}
		metrics.ObserveGatewayCall(op, outcome, time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fault.Transport(op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fault.Transport(op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("gateway call failed")
		return fault.Transport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Str("message", msg).Msg("gateway call rejected")
		return fault.FromStatus(op, resp.StatusCode, msg)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fault.Transport(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
