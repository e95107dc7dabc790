package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Error taxonomy surfaced to the coordinator. Remote failures are never
// retried here; callers decide how to present them.
var (
	ErrUnreachable    = errors.New("game server unreachable")
	ErrRoomNotFound   = errors.New("room not found")
	ErrCreateRejected = errors.New("room creation rejected")
)

// APIError carries the raw status/body of a rejected call, wrapped under
// one of the sentinel errors above.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("game api: status=%d body=%s", e.Status, truncate(e.Body, 256))
}

// RoomClient is the remote-call surface the coordinator depends on.
type RoomClient interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*CreatedRoom, error)
	JoinRoom(ctx context.Context, req JoinRoomRequest) (*JoinData, error)
	RoomStatus(ctx context.Context, code string) (*RoomState, error)
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 32},
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*CreatedRoom, error) {
	var out CreatedRoom
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/rooms/create", req, &out, fasthttp.StatusCreated, ErrCreateRejected); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinRoom(ctx context.Context, req JoinRoomRequest) (*JoinData, error) {
	var out JoinData
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/rooms/join", req, &out, fasthttp.StatusOK, ErrRoomNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RoomStatus(ctx context.Context, code string) (*RoomState, error) {
	var out RoomState
	path := "/api/rooms/" + url.PathEscape(strings.TrimSpace(code))
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, fasthttp.StatusOK, ErrRoomNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON issues a single round trip. Transport failures map to ErrUnreachable;
// a status other than wantStatus maps to rejectErr with the APIError attached.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, wantStatus int, rejectErr error) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	status := resp.StatusCode()
	if status != wantStatus {
		apiErr := &APIError{Status: status, Body: string(resp.Body())}
		return fmt.Errorf("%w: %v", rejectErr, apiErr)
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
