package httputil

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

func NewClientFromConfig(cfg HTTPClientConfig, disableKeepAlives bool) (*http.Client, error) {
	rt, err := NewRoundTripperFromConfig(cfg, disableKeepAlives)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: rt}, nil
}

// NewRoundTripperFromConfig returns a transport adding the configured credentials to every request.
// Response deadlines are left to the request context since training may run for minutes.
func NewRoundTripperFromConfig(cfg HTTPClientConfig, disableKeepAlives bool) (http.RoundTripper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		DisableKeepAlives:     disableKeepAlives,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	switch {
	case len(cfg.BearerToken) > 0:
		rt = NewBearerAuthRoundTripper(cfg.BearerToken, rt)
	case cfg.BasicAuth != nil:
		rt = NewBasicAuthRoundTripper(cfg.BasicAuth.Username, cfg.BasicAuth.Password, rt)
	}

	return rt, nil
}

type bearerAuthRoundTripper struct {
	bearerToken string
	rt          http.RoundTripper
}

// NewBearerAuthRoundTripper sets a bearer token unless the request already carries an authorization header.
func NewBearerAuthRoundTripper(token string, rt http.RoundTripper) http.RoundTripper {
	return &bearerAuthRoundTripper{token, rt}
}

func (rt *bearerAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(req.Header.Get("Authorization")) == 0 {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", rt.bearerToken))
	}
	return rt.rt.RoundTrip(req)
}

type basicAuthRoundTripper struct {
	username string
	password string
	rt       http.RoundTripper
}

func NewBasicAuthRoundTripper(username string, password string, rt http.RoundTripper) http.RoundTripper {
	return &basicAuthRoundTripper{username, password, rt}
}

func (rt *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(req.Header.Get("Authorization")) != 0 {
		return rt.rt.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.SetBasicAuth(rt.username, strings.TrimSpace(rt.password))
	return rt.rt.RoundTrip(req)
}
