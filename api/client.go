// Package api contains the transport shared by the Monetize and Promote
// façades: credentials, authenticated request execution, the response
// envelope, gzip report downloads and the paginated stream reader.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raine/ironsource-go/api/auth"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	PlatformBaseURL   = "https://platform.ironsrc.com"
	AdvertiserBaseURL = "https://api.ironsrc.com"
	AudienceBaseURL   = "https://platform-api.supersonic.com"

	Version = "1.2.0"

	// DateLayout is the date format used in query parameters.
	DateLayout = "2006-01-02"

	defaultTimeout = 60 * time.Second
)

// UserAgent identifies the library to the API.
var UserAgent = "ironsource-go/" + Version

// AuthScheme selects the Authorization header sent with a request.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBearer
	AuthBasic
)

// ClientOpts configures a Client. Zero values fall back to production hosts
// and a 60 second per-request timeout. RequestsPerSecond <= 0 disables the
// client side limiter.
type ClientOpts struct {
	User   string
	Token  string
	Secret string

	PlatformURL   string
	AdvertiserURL string
	AudienceURL   string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
}

// Client executes authenticated calls against the ironSource hosts. It owns
// its bearer token cache; nothing is shared between clients.
type Client struct {
	http          *resty.Client
	platformURL   string
	advertiserURL string
	audienceURL   string
	limiter       *rate.Limiter
	tokens        *auth.TokenCache

	mu     sync.RWMutex
	user   string
	token  string
	secret string
}

func NewClient(opts ClientOpts) *Client {
	c := &Client{
		platformURL:   PlatformBaseURL,
		advertiserURL: AdvertiserBaseURL,
		audienceURL:   AudienceBaseURL,
		tokens:        auth.NewTokenCache(),
		user:          opts.User,
		token:         opts.Token,
		secret:        opts.Secret,
	}
	if opts.PlatformURL != "" {
		c.platformURL = strings.TrimRight(opts.PlatformURL, "/")
	}
	if opts.AdvertiserURL != "" {
		c.advertiserURL = strings.TrimRight(opts.AdvertiserURL, "/")
	}
	if opts.AudienceURL != "" {
		c.audienceURL = strings.TrimRight(opts.AudienceURL, "/")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if opts.HTTPClient != nil {
		c.http = resty.NewWithClient(opts.HTTPClient)
	} else {
		c.http = resty.New()
	}
	c.http.
		SetDebug(false).
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent)

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return c
}

// NewClientWithBaseURL points every host at baseURL (for testing).
func NewClientWithBaseURL(user, token, secret, baseURL string) *Client {
	return NewClient(ClientOpts{
		User:          user,
		Token:         token,
		Secret:        secret,
		PlatformURL:   baseURL,
		AdvertiserURL: baseURL,
		AudienceURL:   baseURL,
	})
}

// SetCredentials replaces the account credentials. A cached bearer token is
// dropped when any of them changes.
func (c *Client) SetCredentials(user, token, secret string) {
	c.mu.Lock()
	changed := c.user != user || c.token != token || c.secret != secret
	c.user, c.token, c.secret = user, token, secret
	c.mu.Unlock()

	if changed {
		c.tokens.Reset()
	}
}

func (c *Client) credentials() (user, token, secret string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user, c.token, c.secret
}

// PlatformURL joins path onto the publisher platform host.
func (c *Client) PlatformURL(path string) string {
	return c.platformURL + path
}

// AdvertiserURL joins path onto the advertiser API host.
func (c *Client) AdvertiserURL(path string) string {
	return c.advertiserURL + path
}

// AudienceURL joins path onto the audience API host.
func (c *Client) AudienceURL(path string) string {
	return c.audienceURL + path
}

// BearerToken returns a valid bearer token, exchanging the credentials for a
// new one when the cached token is missing or expired.
func (c *Client) BearerToken(ctx context.Context) (string, error) {
	_, token, secret := c.credentials()
	return c.tokens.Get(func() (string, error) {
		return auth.FetchBearer(ctx, c.http, c.platformURL, secret, token)
	})
}

// BasicToken returns the static basic-auth token for the credentials.
func (c *Client) BasicToken() string {
	user, _, secret := c.credentials()
	return auth.BasicToken(user, secret)
}

// File is one multipart file part.
type File struct {
	Param  string
	Name   string
	Reader io.Reader
}

// Request describes a single API call.
type Request struct {
	Method string
	URL    string
	Auth   AuthScheme
	Query  url.Values
	JSON   any
	Form   map[string]string
	Files  []File
}

func (c *Client) authorization(ctx context.Context, scheme AuthScheme) (string, error) {
	switch scheme {
	case AuthBearer:
		token, err := c.BearerToken(ctx)
		if err != nil {
			return "", err
		}
		return "Bearer " + token, nil
	case AuthBasic:
		return "Basic " + c.BasicToken(), nil
	default:
		return "", nil
	}
}

// wait blocks on the client side limiter, if one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Execute performs req and wraps the outcome in the response envelope. It
// never returns a Go error: failures are reported through ErrorCode.
func (c *Client) Execute(ctx context.Context, req Request) Response {
	if err := c.wait(ctx); err != nil {
		return Response{Body: []byte(err.Error()), ErrorCode: http.StatusInternalServerError, cause: err}
	}

	authHeader, err := c.authorization(ctx, req.Auth)
	if err != nil {
		return Response{Body: []byte(err.Error()), ErrorCode: http.StatusInternalServerError, cause: err}
	}

	r := c.http.R().SetContext(ctx)
	if authHeader != "" {
		r.SetHeader("Authorization", authHeader)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.JSON != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.JSON)
	}
	if len(req.Form) > 0 {
		r.SetFormData(req.Form)
	}
	for _, f := range req.Files {
		r.SetFileReader(f.Param, f.Name, f.Reader)
	}

	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL).Err(err).Msg("request failed")
		return Response{Body: []byte(err.Error()), ErrorCode: http.StatusInternalServerError, cause: err}
	}

	log.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", res.StatusCode()).
		Msg("ironsource api call")

	if res.IsError() {
		return failed(res.StatusCode(), res.Body(), res.Header())
	}
	return succeeded(res.Body(), res.Header())
}

// Do is Execute followed by conversion of a failed envelope into an error.
func (c *Client) Do(ctx context.Context, op string, req Request) (Response, error) {
	res := c.Execute(ctx, req)
	if err := res.Err(op); err != nil {
		return res, err
	}
	return res, nil
}

// DoJSON performs the request and decodes the response body into dest.
// dest may be nil when the body is not needed.
func (c *Client) DoJSON(ctx context.Context, op string, req Request, dest any) error {
	res, err := c.Do(ctx, op, req)
	if err != nil {
		return err
	}
	if dest == nil || len(res.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body, dest); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
