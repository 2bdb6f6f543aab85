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
	"m4o.io/sandbox/model"
)

// Filter is an optional post-download pass pruning a downloaded collection
// in place.  Filters compose in order; the default pipeline runs none.
type Filter func(model.Elements)

// ClipToBBox drops nodes whose coordinates fall outside the box, and any
// element that holds a relation as a member.  Nested relations clip badly,
// so they are excluded wholesale.
func ClipToBBox(box model.BoundingBox) Filter {
	return func(els model.Elements) {
		for key, e := range els {
			if !e.Inside(box) {
				delete(els, key)
				continue
			}

			for _, m := range e.Members {
				if m.Type == model.RELATION {
					delete(els, key)
					break
				}
			}
		}
	}
}

// DropMissingRefs removes ways referencing a node absent from the
// collection, then relations referencing an absent node or way.  This is a
// single pass, not a fixpoint: an element removed here does not retroactively
// invalidate elements that referenced it within the same pass.
func DropMissingRefs(els model.Elements) {
	nodes := make(map[model.ID]struct{})
	for key := range els {
		if key.Kind == model.NODE {
			nodes[key.ID] = struct{}{}
		}
	}

	for key, e := range els {
		for _, ref := range e.NodeIDs {
			if _, ok := nodes[ref]; !ok {
				delete(els, key)
				break
			}
		}
	}

	ways := make(map[model.ID]struct{})
	for key := range els {
		if key.Kind == model.WAY {
			ways[key.ID] = struct{}{}
		}
	}

	for key, e := range els {
		for _, m := range e.Members {
			missing := false
			switch m.Type {
			case model.NODE:
				_, ok := nodes[m.Ref]
				missing = !ok
			case model.WAY:
				_, ok := ways[m.Ref]
				missing = !ok
			}

			if missing {
				delete(els, key)
				break
			}
		}
	}
}

// DropBareNodes removes nodes that carry no tags and are referenced by no
// way or relation.  Untagged orphan vertices are noise; tagged nodes stay
// even when unreferenced, they may be meaningful points of interest.
func DropBareNodes(els model.Elements) {
	referenced := make(map[model.ID]struct{})
	for _, e := range els {
		for _, ref := range e.NodeIDs {
			referenced[ref] = struct{}{}
		}
		for _, m := range e.Members {
			if m.Type == model.NODE {
				referenced[m.Ref] = struct{}{}
			}
		}
	}

	for key, e := range els {
		if key.Kind != model.NODE || len(e.Tags) > 0 {
			continue
		}
		if _, ok := referenced[key.ID]; !ok {
			delete(els, key)
		}
	}
}
