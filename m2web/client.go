package m2web

import (
	"context"
	"net/http"
	"strconv"
	"sync"
)

// Default connection parameters applied by New when the corresponding
// Config field is left empty. They mirror the documented Talk2M demo
// account and exist so a zero Config still produces a usable client.
const (
	// DefaultBaseURL is the production M2Web API endpoint.
	DefaultBaseURL = "https://m2web.talk2m.com/t2mapi"

	defaultAccount     = "account1"
	defaultUsername    = "username1"
	defaultPassword    = "password1"
	defaultDeveloperID = "731e38ec-981f-4f31-9cb5-e87f0d571816"
)

// Config holds the immutable connection and authentication parameters of a
// client. Empty string fields are replaced with defaults by New.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Account is the Talk2M corporate account name.
	Account string

	// Username is the Talk2M user attached to the account.
	Username string

	// Password is the password of Username.
	Password string

	// DeveloperID is the Talk2M API key authorising API usage.
	DeveloperID string

	// StatefulAuth selects session-based authentication: Login exchanges
	// the credentials for a session token reused by subsequent calls.
	// When false every call carries the full credentials and Login/Logout
	// are rejected.
	StatefulAuth bool
}

// Client talks to the M2Web API on behalf of one account.
//
// Each operation performs at most one HTTP GET; there are no retries, no
// rate limiting and no internal timeout. Cancellation and deadlines come
// from the caller's context and from the injected http.Client.
//
// Thread Safety: the session state is mutex-guarded, so a single client is
// safe for concurrent use from multiple goroutines.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	session  string
	consumed bool
}

// New creates a client from cfg, filling in defaults for empty fields.
//
// The HTTP transport is injected explicitly: pass nil to use a default
// http.Client, or supply one to control timeouts, TLS, or to substitute a
// test server transport.
func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Account == "" {
		cfg.Account = defaultAccount
	}
	if cfg.Username == "" {
		cfg.Username = defaultUsername
	}
	if cfg.Password == "" {
		cfg.Password = defaultPassword
	}
	if cfg.DeveloperID == "" {
		cfg.DeveloperID = defaultDeveloperID
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// Login opens a stateful session.
//
// It always authenticates with the full credentials, stores the session
// token returned by the API and returns it. Calling Login again simply
// re-authenticates and overwrites the stored token.
//
// Only valid when Config.StatefulAuth is set; a stateless client gets a
// KindStatelessAuthSet error without any network call.
func (c *Client) Login(ctx context.Context) (string, error) {
	if err := c.requireLive(); err != nil {
		return "", err
	}
	if err := c.requireStateful(); err != nil {
		return "", err
	}

	resp, err := c.requestAPI(ctx, endpointLogin, nil)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.session = resp.Session
	c.mu.Unlock()

	return resp.Session, nil
}

// Logout closes the stateful session and consumes the client.
//
// On success the session token is invalidated server-side, cleared locally,
// and the client transitions to its terminal state: every further operation
// fails with KindClientConsumed. If the logout request fails the token is
// left intact so the caller can retry.
//
// Only valid when Config.StatefulAuth is set; a stateless client gets a
// KindStatelessAuthSet error without any network call.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.requireLive(); err != nil {
		return err
	}
	if err := c.requireStateful(); err != nil {
		return err
	}

	if _, err := c.requestAPI(ctx, endpointLogout, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = ""
	c.consumed = true
	c.mu.Unlock()

	return nil
}

// Devices returns the devices registered for the corporate account.
//
// pool restricts the listing to one device pool; the empty string means no
// filter. The API treats an empty result as exceptional, so zero devices is
// reported as a KindNoContent error rather than an empty slice.
func (c *Client) Devices(ctx context.Context, pool string) ([]Device, error) {
	if err := c.requireLive(); err != nil {
		return nil, err
	}

	resp, err := c.requestAPI(ctx, endpointGetEwons, []queryParam{{"pool", pool}})
	if err != nil {
		return nil, err
	}

	if len(resp.Ewons) == 0 {
		return nil, &Error{
			Code:    204,
			Kind:    KindNoContent,
			Message: "no eWONs were returned by the API",
		}
	}
	return resp.Ewons, nil
}

// DeviceByName returns the single device with exactly the given name, as
// reported by Devices.
func (c *Client) DeviceByName(ctx context.Context, name string) (Device, error) {
	if err := c.requireLive(); err != nil {
		return Device{}, err
	}

	resp, err := c.requestAPI(ctx, endpointGetEwon, []queryParam{{"name", name}})
	if err != nil {
		return Device{}, err
	}
	return resp.Ewon, nil
}

// DeviceByID returns the single device with exactly the given numeric id,
// as reported by Devices.
func (c *Client) DeviceByID(ctx context.Context, id uint32) (Device, error) {
	if err := c.requireLive(); err != nil {
		return Device{}, err
	}

	params := []queryParam{{"id", strconv.FormatUint(uint64(id), 10)}}
	resp, err := c.requestAPI(ctx, endpointGetEwon, params)
	if err != nil {
		return Device{}, err
	}
	return resp.Ewon, nil
}

// requireLive rejects any operation on a client already closed by Logout.
func (c *Client) requireLive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return &Error{
			Code:    500,
			Kind:    KindClientConsumed,
			Message: "client was closed by logout, create a new one",
		}
	}
	return nil
}

// requireStateful rejects session operations on a stateless client.
func (c *Client) requireStateful() error {
	if !c.cfg.StatefulAuth {
		return &Error{
			Code:    500,
			Kind:    KindStatelessAuthSet,
			Message: "stateful auth was not set",
		}
	}
	return nil
}
