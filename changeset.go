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
	"strconv"
	"strings"

	"m4o.io/sandbox/internal/osc"
	"m4o.io/sandbox/model"
)

// Changeset is one open transactional unit against a server.  OpenChangeset
// acquires it, one or more Upload calls run inside it, and Close releases
// it; callers defer Close so the changeset is closed on every exit path.
type Changeset struct {
	// ID is the server-assigned changeset id.
	ID int64

	client *Client
	out    io.Writer
}

// OpenChangeset opens a changeset on the server with the given comment.
// Failing to open fails the whole operation.
func OpenChangeset(c *Client, comment string, out io.Writer) (*Changeset, error) {
	payload, err := osc.EncodeChangeset(comment)
	if err != nil {
		return nil, err
	}

	resp, err := c.Put("changeset/create", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create a changeset: %w", err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(resp)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected changeset/create response %q: %w", resp, err)
	}

	return &Changeset{ID: id, client: c, out: out}, nil
}

// Upload submits one homogeneous create or delete payload within the
// changeset and returns the id remapping from the server's diff result.
// Deletions yield an empty map.
func (cs *Changeset) Upload(payload []byte) (model.IDMap, error) {
	resp, err := cs.client.Post(fmt.Sprintf("changeset/%d/upload", cs.ID), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to changeset %d: %w", cs.ID, err)
	}

	return osc.DecodeDiff(bytes.NewReader(resp))
}

// Close closes the changeset.  A close failure is only a warning: any
// contained upload has already been durably committed, or the caller is
// already unwinding from an earlier error.
func (cs *Changeset) Close() {
	if _, err := cs.client.Put(fmt.Sprintf("changeset/%d/close", cs.ID), nil); err != nil {
		fmt.Fprintf(cs.out, "Failed to close changeset %d: %v\n", cs.ID, err)
	}
}
