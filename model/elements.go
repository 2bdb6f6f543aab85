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

package model

import (
	"sort"
)

// ID is the primary key of an element.  Server-assigned ids are positive;
// negative ids are client-side placeholders used before creation.
type ID int64

// Kind is an enumeration of OSM element kinds.
type Kind string

const (
	// NODE is a specific point on the earth's surface defined by its
	// latitude and longitude.
	NODE Kind = "node"

	// WAY is an ordered list of nodes that define a polyline.
	WAY Kind = "way"

	// RELATION is a multipurpose data structure that documents a
	// relationship between two or more elements.
	RELATION Kind = "relation"
)

// Rank orders kinds so that referenced elements sort before referencing
// ones: nodes, then ways, then relations.
func (k Kind) Rank() int {
	switch k {
	case NODE:
		return 0
	case WAY:
		return 1
	case RELATION:
		return 2
	default:
		return 3
	}
}

// Valid reports whether k is one of the three element kinds.
func (k Kind) Valid() bool {
	return k == NODE || k == WAY || k == RELATION
}

// Ref is the composite key of an element, unique per kind partition.
type Ref struct {
	Kind Kind
	ID   ID
}

// Member is a typed reference with a semantic role, held by relations.
type Member struct {
	Type Kind
	Ref  ID
	Role string
}

// Element is a single OSM element of any kind.  An element's kind never
// changes after construction; its id and references are rewritten only by
// renumbering.
type Element struct {
	Kind    Kind
	ID      ID
	Version int
	Lon     *Degrees // nodes only
	Lat     *Degrees // nodes only
	Tags    map[string]string
	NodeIDs []ID     // ways only
	Members []Member // relations only
}

// Key returns the composite key of the element.
func (e *Element) Key() Ref {
	return Ref{Kind: e.Kind, ID: e.ID}
}

// Inside reports whether the element lies within the box.  Ways and
// relations carry no coordinates of their own and are never filtered by
// geometry directly, so they are always inside.
func (e *Element) Inside(b BoundingBox) bool {
	if e.Lon == nil || e.Lat == nil {
		return true
	}

	return b.Contains(*e.Lon, *e.Lat)
}

// Elements is a keyed collection of elements, unique per (kind, id).
type Elements map[Ref]*Element

// Add inserts the element unless its key is already present.  First wins:
// a key collision means the identical element arrived twice, e.g. from
// overlapping quadrant boundaries.
func (es Elements) Add(e *Element) {
	if _, ok := es[e.Key()]; !ok {
		es[e.Key()] = e
	}
}

// Merge folds other into es, first-wins on duplicate keys.
func (es Elements) Merge(other Elements) {
	for _, e := range other {
		es.Add(e)
	}
}

// Slice returns the elements in unspecified order.
func (es Elements) Slice() []*Element {
	out := make([]*Element, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}

	return out
}

// less is the canonical (kind rank, id) ordering.
func less(a, b *Element) bool {
	if a.Kind.Rank() != b.Kind.Rank() {
		return a.Kind.Rank() < b.Kind.Rank()
	}

	return a.ID < b.ID
}

// SortForCreate sorts ascending by (kind rank, id) so referenced elements
// are created before referencing ones.
func SortForCreate(els []*Element) {
	sort.Slice(els, func(i, j int) bool { return less(els[i], els[j]) })
}

// SortForDelete sorts in the exact reverse of the creation order, so
// referencing elements are deleted before the elements they reference.
func SortForDelete(els []*Element) {
	sort.Slice(els, func(i, j int) bool { return less(els[j], els[i]) })
}
