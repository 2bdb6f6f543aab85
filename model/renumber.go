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

// IDMap remaps element ids within a kind partition.  Two id spaces flow
// through the upload protocol: negative client-side placeholders before
// creation, and the real server-assigned ids returned batch by batch.
// Mappings are applied cumulatively across sequential batches.
type IDMap map[Ref]ID

// Apply rewrites the id of every element covered by the map, and every
// reference held by any element, whether or not its owner was remapped.
// Uncovered references are left untouched; they belong to elements already
// known to the server.
func (m IDMap) Apply(els []*Element) {
	for _, e := range els {
		if id, ok := m[e.Key()]; ok {
			e.ID = id
		}

		for i, ref := range e.NodeIDs {
			if id, ok := m[Ref{Kind: NODE, ID: ref}]; ok {
				e.NodeIDs[i] = id
			}
		}

		for i, mem := range e.Members {
			if id, ok := m[Ref{Kind: mem.Type, ID: mem.Ref}]; ok {
				e.Members[i].Ref = id
			}
		}
	}
}

// RenumberForCreate assigns each element a unique negative placeholder id,
// -1 and decrementing in slice order, and rewrites every cross-reference in
// one atomic pass so references resolve within the same upload.
func RenumberForCreate(els []*Element) {
	m := make(IDMap, len(els))

	next := ID(-1)
	for _, e := range els {
		m[e.Key()] = next
		next--
	}

	m.Apply(els)
}
