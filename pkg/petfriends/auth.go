package petfriends

import (
	"context"
	"net/http"

	"github.com/samvad-hq/petfriends-verifier/pkg/httpclient"
)

// GetAPIKey exchanges an email/password pair for an auth key. Both values are
// sent unchanged; a 403 with no key is the service's answer to bad credentials.
func (c *Client) GetAPIKey(ctx context.Context, email, password string) (int, Body, error) {
	return c.do(ctx, "get api key", httpclient.Request{
		Method: http.MethodGet,
		URL:    c.endpoint("key"),
		Headers: map[string]string{
			headerEmail:    email,
			headerPassword: password,
		},
	})
}

// Login is GetAPIKey for a Credentials value.
func (c *Client) Login(ctx context.Context, creds Credentials) (int, Body, error) {
	return c.GetAPIKey(ctx, creds.Email, creds.Password)
}
