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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/sandbox/model"
)

func TestRenumberForCreate(t *testing.T) {
	// Three nodes and one way referencing the first two, in creation
	// order: placeholders must come out as -1..-4 with the way's
	// references rewritten to the placeholders, never the originals.
	els := []*model.Element{
		node(101, 0.1, 0.1),
		node(102, 0.2, 0.2),
		node(103, 0.3, 0.3),
		way(201, 101, 102),
	}
	model.SortForCreate(els)

	model.RenumberForCreate(els)

	assert.Equal(t, model.ID(-1), els[0].ID)
	assert.Equal(t, model.ID(-2), els[1].ID)
	assert.Equal(t, model.ID(-3), els[2].ID)
	assert.Equal(t, model.ID(-4), els[3].ID)
	assert.Equal(t, []model.ID{-1, -2}, els[3].NodeIDs)
}

func TestRenumberLeavesForeignRefsUntouched(t *testing.T) {
	// The way references node 999, which is not part of the set; that
	// reference belongs to the server and must survive renumbering.
	els := []*model.Element{
		node(101, 0.1, 0.1),
		way(201, 101, 999),
	}
	model.SortForCreate(els)

	model.RenumberForCreate(els)

	assert.Equal(t, []model.ID{-1, 999}, els[1].NodeIDs)
}

func TestIDMapApplyRelationMembers(t *testing.T) {
	els := []*model.Element{
		node(101, 0.1, 0.1),
		way(201, 101),
		relation(301,
			model.Member{Type: model.NODE, Ref: 101, Role: "stop"},
			model.Member{Type: model.WAY, Ref: 201, Role: "route"},
			model.Member{Type: model.WAY, Ref: 888, Role: "route"},
		),
	}
	model.SortForCreate(els)

	model.RenumberForCreate(els)

	rel := els[2]
	assert.Equal(t, model.ID(-1), rel.Members[0].Ref)
	assert.Equal(t, model.ID(-2), rel.Members[1].Ref)
	assert.Equal(t, model.ID(888), rel.Members[2].Ref, "foreign member untouched")
}

func TestIDMapApplyCumulative(t *testing.T) {
	// Simulates the two-batch create protocol: after applying the id map
	// returned by a batch, no reference in the remaining working set may
	// still point at a placeholder the map covers.
	els := []*model.Element{
		node(101, 0.1, 0.1),
		node(102, 0.2, 0.2),
		way(201, 101, 102),
	}
	model.SortForCreate(els)
	model.RenumberForCreate(els)

	// First batch: the two nodes come back with real ids.
	fromServer := model.IDMap{
		{Kind: model.NODE, ID: -1}: 5001,
		{Kind: model.NODE, ID: -2}: 5002,
	}
	fromServer.Apply(els)

	w := els[2]
	assert.Equal(t, []model.ID{5001, 5002}, w.NodeIDs)
	assert.Equal(t, model.ID(-3), w.ID, "way still awaits its batch")

	// Second batch: the way itself.
	fromServer = model.IDMap{{Kind: model.WAY, ID: -3}: 6001}
	fromServer.Apply(els)

	assert.Equal(t, model.ID(6001), w.ID)
}
