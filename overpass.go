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

package sandbox

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"m4o.io/sandbox/internal/osc"
	"m4o.io/sandbox/model"
)

// Overpass queries an Overpass API endpoint for elements inside a bounding
// box, optionally filtered by a tag predicate and pinned to a point in time.
type Overpass struct {
	// Endpoint is the API root, without the /interpreter suffix.
	Endpoint string

	HTTPClient *http.Client
}

// NewOverpass creates a fetcher against the given Overpass endpoint.
func NewOverpass(endpoint string) *Overpass {
	return &Overpass{Endpoint: endpoint, HTTPClient: http.DefaultClient}
}

// Query builds the Overpass QL statement for the box.  filter is an optional
// tag predicate, e.g. `building=yes`; date is an optional attic snapshot
// date.  Referenced children are pulled in transitively so ways and
// relations arrive with their members.
func (o *Overpass) Query(box model.BoundingBox, filter, date string) string {
	var datePart, filterPart string
	if date != "" {
		datePart = fmt.Sprintf("[date:%q]", date)
	}
	if filter != "" {
		filterPart = "[" + filter + "]"
	}

	return fmt.Sprintf("[timeout:300]%s[bbox:%s];(nwr%s;);(_.;>;);out meta qt;",
		datePart, box.OverpassQuery(), filterPart)
}

// Fetch downloads the elements matching the query.  There is no recovery
// for an oversized area on this path; any non-success response fails the
// operation, and a rate-limited response is reported together with the
// endpoint's status page.
func (o *Overpass) Fetch(box model.BoundingBox, filter, date string) (model.Elements, error) {
	query := url.Values{"data": {o.Query(box, filter, date)}}

	httpClient := o.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Get(o.Endpoint + "/interpreter?" + query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		if strings.Contains(string(data), "rate_limited") {
			return nil, fmt.Errorf("rate limited by the Overpass API\n%s", o.status(httpClient))
		}

		return nil, fmt.Errorf("could not download data from the Overpass API: %s", data)
	}

	return osc.DecodeOSM(bytes.NewReader(data))
}

// status fetches the endpoint's status page, consulted only to render a
// rate-limit diagnostic.
func (o *Overpass) status(httpClient *http.Client) string {
	resp, err := httpClient.Get(o.Endpoint + "/status")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	return string(data)
}
