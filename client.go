// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sandbox copies a bounded area of OpenStreetMap data from a donor
// source into the development sandbox: it clears whatever the sandbox holds
// in the box, downloads fresh elements, renumbers their ids, and uploads
// them in changeset-sized batches.
package sandbox

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/klauspost/compress/gzip"

	"m4o.io/sandbox/internal/osc"
)

// Well-known API endpoints.
const (
	OSMAPI          = "https://api.openstreetmap.org/api/0.6/"
	SandboxAPI      = "https://master.apis.dev.openstreetmap.org/api/0.6/"
	DefaultOverpass = "https://overpass-api.de/api"
)

// HTTPError is a non-success API response, kept with its raw status and body
// so callers can classify it.
type HTTPError struct {
	Code int
	Body string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Client issues requests against one OSM-style API server.
type Client struct {
	// BaseURL is the API prefix, ending in a slash.
	BaseURL string

	// Auth is a pre-formed Authorization header value, empty for
	// unauthenticated access.
	Auth string

	HTTPClient *http.Client
}

// NewClient creates a client for the API rooted at base.
func NewClient(base, auth string) *Client {
	return &Client{BaseURL: base, Auth: auth, HTTPClient: http.DefaultClient}
}

// Get issues a GET request against the endpoint.
func (c *Client) Get(endpoint string, query url.Values) ([]byte, error) {
	return c.do(http.MethodGet, endpoint, query, nil)
}

// Put issues a PUT request against the endpoint.
func (c *Client) Put(endpoint string, body []byte) ([]byte, error) {
	return c.do(http.MethodPut, endpoint, nil, body)
}

// Post issues a POST request against the endpoint.
func (c *Client) Post(endpoint string, body []byte) ([]byte, error) {
	return c.do(http.MethodPost, endpoint, nil, body)
}

func (c *Client) do(method, endpoint string, query url.Values, body []byte) ([]byte, error) {
	u := c.BaseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/xml")
	// Request compression explicitly; map downloads can be large.  Setting
	// the header disables the transport's transparent decoding, so the
	// response is inflated below.
	req.Header.Set("Accept-Encoding", "gzip")
	if c.Auth != "" {
		req.Header.Set("Authorization", c.Auth)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Code: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

// readBody drains a response, inflating it when the server honored the gzip
// request.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body

	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("inflate response: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	return io.ReadAll(r)
}

// Capabilities queries the server's advertised maximum number of elements
// per changeset.  Returns 0 when the server does not advertise one.
func (c *Client) Capabilities() (int, error) {
	data, err := c.Get("capabilities", nil)
	if err != nil {
		return 0, err
	}

	return osc.DecodeCapabilities(bytes.NewReader(data))
}

// UserDetails probes the authenticated user's details, validating the held
// credentials.
func (c *Client) UserDetails() error {
	data, err := c.Get("user/details", nil)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("empty user details response")
	}

	return nil
}
