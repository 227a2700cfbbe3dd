// Package integration is the HTTP client of the nbayes server API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-sod/nbayes/internal/classify"
	"github.com/go-sod/nbayes/internal/httputil"
	"github.com/go-sod/nbayes/internal/model"
	"github.com/go-sod/nbayes/internal/train"
)

type prefixRoundTripper struct {
	scheme string
	addr   string
	rt     http.RoundTripper
}

func (p *prefixRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	u := r.URL
	if u.Scheme == "" {
		u.Scheme = p.scheme
	}
	if u.Host == "" {
		u.Host = p.addr
	}

	return p.rt.RoundTrip(r)
}

// NewClient targets addr, either host:port or a base URL such as https://host:port.
func NewClient(addr string, cfg httputil.HTTPClientConfig) (*Client, error) {
	scheme := "http"
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return nil, fmt.Errorf("parse server address: %w", err)
		}
		scheme, addr = u.Scheme, u.Host
	}
	rt, err := httputil.NewRoundTripperFromConfig(cfg, false)
	if err != nil {
		return nil, err
	}
	return &Client{client: &http.Client{Transport: &prefixRoundTripper{scheme: scheme, addr: addr, rt: rt}}}, nil
}

type Client struct {
	client *http.Client
}

func (c *Client) Train(ctx context.Context, r train.Request) (model.Summary, error) {
	var out model.Summary
	err := c.do(ctx, http.MethodPost, "/train", &r, &out)
	return out, err
}

func (c *Client) Classify(ctx context.Context, r classify.Request) (classify.Response, error) {
	var out classify.Response
	err := c.do(ctx, http.MethodPost, "/classify", &r, &out)
	return out, err
}

func (c *Client) Models(ctx context.Context) ([]model.Summary, error) {
	var out []model.Summary
	err := c.do(ctx, http.MethodGet, "/models", nil, &out)
	return out, err
}

// Model returns the full JSON description of the named model.
func (c *Client) Model(ctx context.Context, name string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, "/models?name="+url.QueryEscape(name), nil, &out)
	return out, err
}

// Delete returns false when the server does not know the model.
func (c *Client) Delete(ctx context.Context, name string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/models?name="+url.QueryEscape(name), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("unable marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, path, nil)
	}
	if err != nil {
		return fmt.Errorf("create new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error with sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
