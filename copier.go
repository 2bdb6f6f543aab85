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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"m4o.io/sandbox/internal/osc"
	"m4o.io/sandbox/model"
)

const (
	// MaxArea is the largest bounding box the pipeline accepts, in square
	// degrees.  0.01 is roughly 10×10 km at mid-latitudes.
	MaxArea = 0.01

	// ConfirmThreshold is the number of existing sandbox elements above
	// which clearing requires explicit operator confirmation.
	ConfirmThreshold = 10000

	// DefaultChangesetSize is the per-changeset element capacity assumed
	// when a server does not advertise one.
	DefaultChangesetSize = 10000
)

// Copier is the clear-then-copy pipeline.  Everything runs sequentially:
// later create batches depend on the id mappings returned by earlier ones,
// and no batch is safely retryable once submitted.
type Copier struct {
	// Sandbox is the destination server, authenticated.
	Sandbox *Client

	// Source is the donor-matching production API, consulted only for its
	// changeset capacity, which governs create batch sizing.
	Source *Client

	// Overpass is the donor data fetcher.
	Overpass *Overpass

	// Filter is an optional Overpass tag predicate; Date an optional
	// point-in-time snapshot date.
	Filter string
	Date   string

	// Filters are optional post-download passes, run in order.  None by
	// default.
	Filters []Filter

	// Out receives progress narration; Confirm supplies interactive
	// confirmation input.  Default to stdout and stdin.
	Out     io.Writer
	Confirm io.Reader

	// Progress, when set, is invoked after each uploaded create batch.
	Progress func(done, total int)
}

// NewCopier assembles a pipeline from the held credential header and an
// Overpass endpoint.
func NewCopier(auth, overpass string) *Copier {
	return &Copier{
		Sandbox:  NewClient(SandboxAPI, auth),
		Source:   NewClient(OSMAPI, ""),
		Overpass: NewOverpass(overpass),
	}
}

// Run executes the pipeline for the box: clear the sandbox's copy of the
// area, download fresh elements from the donor source, renumber, upload.
// Any transport or server failure is fatal to the run; the operator
// re-invokes.
func (cp *Copier) Run(box model.BoundingBox) error {
	box, err := cp.validate(box)
	if err != nil {
		return err
	}

	existing, err := FetchMap(cp.Sandbox, box)
	if err != nil {
		return err
	}

	if len(existing) > ConfirmThreshold && !cp.confirm(len(existing)) {
		// Declined confirmation is a clean stop, not an error.
		return nil
	}

	if len(existing) == 0 {
		cp.narrate("Sandbox is empty there.")
	} else {
		cp.narrate("Clearing the area on the sandbox server.")
		if err := cp.deleteAll(existing); err != nil {
			return err
		}
	}

	els, err := cp.download(box)
	if err != nil {
		return err
	}

	if len(els) == 0 {
		cp.narrate("No elements in the given bounding box")
		return nil
	}
	cp.narrate("Downloaded %s elements.", humanize.Comma(int64(len(els))))

	cp.narrate("Uploading new data.")
	if err := cp.createAll(els); err != nil {
		return err
	}

	cp.narrate("Done.")

	return nil
}

// Export downloads the donor elements for the box and writes them to w as a
// standalone osmChange document instead of uploading.  The sandbox is not
// touched.
func (cp *Copier) Export(box model.BoundingBox, w io.Writer) error {
	box, err := cp.validate(box)
	if err != nil {
		return err
	}

	els, err := cp.download(box)
	if err != nil {
		return err
	}

	sorted := els.Slice()
	model.SortForCreate(sorted)

	return osc.WriteChange(w, sorted)
}

// validate normalizes the box and rejects oversized areas before any
// network traffic.
func (cp *Copier) validate(box model.BoundingBox) (model.BoundingBox, error) {
	box = box.Normalize()
	if box.Area() > MaxArea {
		return box, fmt.Errorf("bounding box %s is too big, try 10×10 km", box)
	}

	return box, nil
}

// download fetches the donor elements and applies the configured filters.
func (cp *Copier) download(box model.BoundingBox) (model.Elements, error) {
	els, err := cp.Overpass.Fetch(box, cp.Filter, cp.Date)
	if err != nil {
		return nil, err
	}

	for _, filter := range cp.Filters {
		filter(els)
	}

	return els, nil
}

// deleteAll clears the existing elements: referencing elements first, in
// changeset-capacity batches, each within its own changeset.
func (cp *Copier) deleteAll(existing model.Elements) error {
	limit := cp.capacity(cp.Sandbox)

	els := existing.Slice()
	model.SortForDelete(els)

	for start := 0; start < len(els); start += limit {
		batch := els[start:min(start+limit, len(els))]
		if err := cp.uploadDelete(batch); err != nil {
			return err
		}
	}

	return nil
}

func (cp *Copier) uploadDelete(batch []*model.Element) error {
	cs, err := OpenChangeset(cp.Sandbox, "Clearing an area before uploading", cp.out())
	if err != nil {
		return err
	}
	defer cs.Close()

	payload, err := osc.EncodeDelete(cs.ID, batch)
	if err != nil {
		return err
	}

	_, err = cs.Upload(payload)

	return err
}

// createAll renumbers the fetched elements to negative placeholders, then
// uploads them in creation order.  The id mapping returned by each batch is
// applied across the whole working set before the next batch goes out, since
// later batches may reference elements created earlier.
func (cp *Copier) createAll(els model.Elements) error {
	limit := cp.capacity(cp.Source)

	sorted := els.Slice()
	model.SortForCreate(sorted)
	model.RenumberForCreate(sorted)

	for start := 0; start < len(sorted); start += limit {
		batch := sorted[start:min(start+limit, len(sorted))]

		idMap, err := cp.uploadCreate(batch)
		if err != nil {
			return err
		}
		idMap.Apply(sorted[start:])

		if cp.Progress != nil {
			cp.Progress(start+len(batch), len(sorted))
		}
	}

	return nil
}

func (cp *Copier) uploadCreate(batch []*model.Element) (idMap model.IDMap, err error) {
	cs, err := OpenChangeset(cp.Sandbox, "Copying data from OSM", cp.out())
	if err != nil {
		return nil, err
	}
	defer cs.Close()

	payload, err := osc.EncodeCreate(cs.ID, batch)
	if err != nil {
		return nil, err
	}

	return cs.Upload(payload)
}

// capacity queries a server's per-changeset element limit, falling back to
// DefaultChangesetSize when unavailable.
func (cp *Copier) capacity(c *Client) int {
	n, err := c.Capabilities()
	if err != nil || n <= 0 {
		cp.narrate("Failed to get maximum changeset size.")
		return DefaultChangesetSize
	}

	return n
}

// confirm blocks for operator agreement before a large destructive delete.
func (cp *Copier) confirm(count int) bool {
	cp.narrate("Sandbox has %s elements at this location.", humanize.Comma(int64(count)))
	cp.narrate(`Proceed with deleting them? (type "yes" if agreed)`)

	in := cp.Confirm
	if in == nil {
		in = os.Stdin
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes")
}

func (cp *Copier) narrate(format string, args ...any) {
	fmt.Fprintf(cp.out(), format+"\n", args...)
}

func (cp *Copier) out() io.Writer {
	if cp.Out == nil {
		return os.Stdout
	}

	return cp.Out
}
