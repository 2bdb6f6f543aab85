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
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"m4o.io/sandbox/internal/osc"
	"m4o.io/sandbox/model"
)

// 509 Bandwidth Limit Exceeded; nonstandard, not in net/http.
const statusBandwidthLimitExceeded = 509

// FetchMap downloads every element inside the box from the server's map
// endpoint.  A 400 response means the area is too large; the box is then
// quartered and each quadrant fetched recursively, as deep as it takes.
// Merging is first-wins: a duplicate (kind, id) from overlapping quadrant
// boundaries is the identical element.  A 509 response means the client has
// been blocked and is not recoverable.
func FetchMap(c *Client, box model.BoundingBox) (model.Elements, error) {
	data, err := c.Get("map", url.Values{"bbox": {box.Query()}})
	if err != nil {
		var he *HTTPError
		if !errors.As(err, &he) {
			return nil, err
		}

		switch he.Code {
		case http.StatusBadRequest:
			merged := make(model.Elements)
			for _, quadrant := range box.Quarter() {
				more, err := FetchMap(c, quadrant)
				if err != nil {
					return nil, err
				}
				merged.Merge(more)
			}

			return merged, nil

		case statusBandwidthLimitExceeded:
			return nil, fmt.Errorf("blocked from the API for downloading too much: %s", he.Body)

		default:
			return nil, err
		}
	}

	return osc.DecodeOSM(bytes.NewReader(data))
}
