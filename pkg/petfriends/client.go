// Package petfriends is a thin client for the PetFriends REST API.
//
// Every operation issues exactly one request and returns the literal HTTP
// status together with the decoded JSON body. The client never validates or
// rewrites caller-supplied values and never stores the auth key; callers pass
// it explicitly to each call.
package petfriends

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/petfriends-verifier/internal/logger"
	"github.com/samvad-hq/petfriends-verifier/pkg/httpclient"
	"github.com/spf13/afero"
)

const (
	DefaultBaseURL = "https://petfriends.skillfactory.ru"
	DefaultTimeout = 30 * time.Second

	headerEmail    = "email"
	headerPassword = "password"
	headerAuthKey  = "auth_key"

	fieldName       = "name"
	fieldAnimalType = "animal_type"
	fieldAge        = "age"
	fieldPhoto      = "pet_photo"
)

// ErrPhotoUnreadable is returned when a referenced photo cannot be read.
// No request is sent in that case.
var ErrPhotoUnreadable = errors.New("photo unreadable")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	HTTP    httpclient.Client
	Photos  afero.Fs
	Logger  logger.Logger
}

// Client issues PetFriends API calls. It holds only immutable configuration
// and is safe to share.
type Client struct {
	baseURL string
	http    httpclient.Client
	photos  afero.Fs
	log     logger.Logger
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", base)
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = httpclient.NewRestyClient(timeout)
	}

	photos := opts.Photos
	if photos == nil {
		photos = afero.NewOsFs()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		photos:  photos,
		log:     logger.Ensure(opts.Logger),
	}, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/api")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func authHeaders(key AuthKey) map[string]string {
	return map[string]string{headerAuthKey: string(key)}
}

func petFields(name, animalType, age string) map[string]string {
	return map[string]string{
		fieldName:       name,
		fieldAnimalType: animalType,
		fieldAge:        age,
	}
}

// do executes req and decodes the reply. op prefixes transport errors.
func (c *Client) do(ctx context.Context, op string, req httpclient.Request) (int, Body, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.log.WarnObj("petfriends request failed", "petfriends_transport_error", map[string]any{
			"op":     op,
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return 0, Body{}, fmt.Errorf("%s: %w", op, err)
	}

	status, body := Decode(resp)
	meta := map[string]any{
		"op":         op,
		"method":     req.Method,
		"url":        req.URL,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if len(body) == 0 {
		meta["raw"] = Describe(resp.Body())
	}
	c.log.DebugObj("petfriends request completed", "petfriends_request", meta)
	return status, body, nil
}
