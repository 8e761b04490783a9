// Package portal talks to the Game Portal: a UI-automation bridge that drives
// the browser session and answers page queries and actions over JSON-RPC 2.0
// on a websocket.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Options configures a portal client
type Options struct {
	Timeout  time.Duration // per call, default 20s
	Rate     float64       // calls per second, 0 disables pacing
	Burst    int
	Language LanguagePack
	Dialer   *websocket.Dialer
}

// Client handles JSON-RPC communication with the bridge.
// A client is owned by the run loop; the mutex only guards against
// misuse from the CLI helpers.
type Client struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	nextID  int
	timeout time.Duration
	limiter *rate.Limiter
	lang    LanguagePack
	token   string
	closed  bool
}

// Dial connects to the bridge at url
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to portal bridge %s: %w", url, err)
	}
	return NewClient(conn, opts), nil
}

// NewClient wraps an established websocket connection
func NewClient(conn *websocket.Conn, opts Options) *Client {
	c := &Client{
		conn:    conn,
		nextID:  1,
		timeout: opts.Timeout,
		lang:    opts.Language,
	}
	if c.timeout <= 0 {
		c.timeout = 20 * time.Second
	}
	if c.lang == (LanguagePack{}) {
		c.lang = EnglishPack
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	return c
}

// Call sends a JSON-RPC request and decodes the result into result.
// Replies to earlier calls that timed out are discarded.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  method,
		Params:  params,
	}
	c.nextID++

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%s: write: %w", method, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("%s: read: %w", method, err)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	}
}

// Close ends the browser session and the connection. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	callErr := c.Call(ctx, MethodClose, nil, nil)

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	if err := c.conn.Close(); err != nil {
		return err
	}
	return callErr
}

// Detach closes the connection but leaves the browser session open,
// for debugging a stuck page by hand
func (c *Client) Detach() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Token returns the session token captured at login
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}
