package httputil

import "fmt"

// HTTPClientConfig configures authentication of outgoing requests.
type HTTPClientConfig struct {
	BasicAuth   *BasicAuth `json:"basicAuth,omitempty" toml:"basic_auth"`
	BearerToken string     `json:"bearerToken,omitempty" toml:"bearer_token"`
}

func (c *HTTPClientConfig) Validate() error {
	if c.BasicAuth != nil && len(c.BearerToken) > 0 {
		return fmt.Errorf("at most one of basic_auth & bearer_token must be configured")
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return fmt.Errorf("basic_auth requires a username")
	}
	return nil
}

type BasicAuth struct {
	Username string `json:"username" toml:"username"`
	Password string `json:"password,omitempty" toml:"password"`
}
