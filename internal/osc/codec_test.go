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

package osc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/sandbox/internal/osc"
	"m4o.io/sandbox/model"
)

const osmFixture = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="101" version="3" lon="10.01" lat="50.01">
    <tag k="amenity" v="bench"/>
  </node>
  <node id="102" version="1" lon="10.02" lat="50.02"/>
  <way id="201" version="2">
    <nd ref="101"/>
    <nd ref="102"/>
    <tag k="highway" v="path"/>
  </way>
  <relation id="301" version="7">
    <member type="node" ref="101" role="stop"/>
    <member type="way" ref="201" role=""/>
    <tag k="type" v="route"/>
  </relation>
</osm>`

func TestDecodeOSM(t *testing.T) {
	els, err := osc.DecodeOSM(strings.NewReader(osmFixture))
	require.NoError(t, err)
	require.Len(t, els, 4)

	n := els[model.Ref{Kind: model.NODE, ID: 101}]
	require.NotNil(t, n)
	assert.Equal(t, 3, n.Version)
	assert.Equal(t, model.Degrees(10.01), *n.Lon)
	assert.Equal(t, model.Degrees(50.01), *n.Lat)
	assert.Equal(t, map[string]string{"amenity": "bench"}, n.Tags)

	w := els[model.Ref{Kind: model.WAY, ID: 201}]
	require.NotNil(t, w)
	assert.Nil(t, w.Lon)
	assert.Equal(t, []model.ID{101, 102}, w.NodeIDs)

	r := els[model.Ref{Kind: model.RELATION, ID: 301}]
	require.NotNil(t, r)
	assert.Equal(t, []model.Member{
		{Type: model.NODE, Ref: 101, Role: "stop"},
		{Type: model.WAY, Ref: 201, Role: ""},
	}, r.Members)
}

func TestCreateRoundTrip(t *testing.T) {
	els, err := osc.DecodeOSM(strings.NewReader(osmFixture))
	require.NoError(t, err)

	sorted := els.Slice()
	model.SortForCreate(sorted)

	payload, err := osc.EncodeCreate(42, sorted)
	require.NoError(t, err)

	again, err := osc.DecodeChange(bytes.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, again, len(els))

	for key, e := range els {
		got := again[key]
		require.NotNil(t, got, "missing %v", key)
		assert.Equal(t, e.Kind, got.Kind)
		assert.Equal(t, e.Tags, got.Tags)
		assert.Equal(t, e.NodeIDs, got.NodeIDs)
		assert.Equal(t, e.Members, got.Members)
		if e.Lon != nil {
			assert.Equal(t, *e.Lon, *got.Lon)
			assert.Equal(t, *e.Lat, *got.Lat)
		} else {
			assert.Nil(t, got.Lon)
		}
	}
}

func TestEncodeCreatePayloadShape(t *testing.T) {
	lon, lat := model.Degrees(10.01), model.Degrees(50.01)
	els := []*model.Element{
		{Kind: model.NODE, ID: -1, Version: 1, Lon: &lon, Lat: &lat},
	}

	payload, err := osc.EncodeCreate(42, els)
	require.NoError(t, err)

	s := string(payload)
	assert.Contains(t, s, `<osmChange version="0.6" generator="osm-sandbox 1.0">`)
	assert.Contains(t, s, `<create>`)
	assert.Contains(t, s, `changeset="42"`)
	assert.Contains(t, s, `visible="true"`)
	assert.NotContains(t, s, `<delete`)
}

func TestEncodeDeletePayloadShape(t *testing.T) {
	els, err := osc.DecodeOSM(strings.NewReader(osmFixture))
	require.NoError(t, err)

	sorted := els.Slice()
	model.SortForDelete(sorted)

	payload, err := osc.EncodeDelete(42, sorted)
	require.NoError(t, err)

	s := string(payload)
	assert.Contains(t, s, `<delete if-unused="true">`)
	assert.Contains(t, s, `visible="false"`)
	assert.Contains(t, s, `changeset="42"`)
	assert.NotContains(t, s, `<create`)

	// Deletion records are stubs: no geometry, tags, or children.
	assert.NotContains(t, s, `<tag`)
	assert.NotContains(t, s, `<nd`)
	assert.NotContains(t, s, `<member`)
	assert.NotContains(t, s, `lon=`)
}

func TestEncodeChangeset(t *testing.T) {
	payload, err := osc.EncodeChangeset("Copying data from OSM")
	require.NoError(t, err)

	s := string(payload)
	assert.Contains(t, s, `<osm>`)
	assert.Contains(t, s, `<changeset>`)
	assert.Contains(t, s, `<tag k="comment" v="Copying data from OSM">`)
	assert.Contains(t, s, `<tag k="created_by" v="osm-sandbox 1.0">`)
}

func TestDecodeDiff(t *testing.T) {
	const diff = `<?xml version="1.0" encoding="UTF-8"?>
<diffResult version="0.6">
  <node old_id="-1" new_id="5001" new_version="1"/>
  <node old_id="-2" new_id="5002" new_version="1"/>
  <way old_id="-3" new_id="6001" new_version="1"/>
</diffResult>`

	m, err := osc.DecodeDiff(strings.NewReader(diff))
	require.NoError(t, err)

	assert.Equal(t, model.IDMap{
		{Kind: model.NODE, ID: -1}: 5001,
		{Kind: model.NODE, ID: -2}: 5002,
		{Kind: model.WAY, ID: -3}:  6001,
	}, m)
}

func TestDecodeCapabilities(t *testing.T) {
	const capabilities = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="OpenStreetMap server">
  <api>
    <version minimum="0.6" maximum="0.6"/>
    <changesets maximum_elements="10000"/>
  </api>
</osm>`

	n, err := osc.DecodeCapabilities(strings.NewReader(capabilities))
	require.NoError(t, err)
	assert.Equal(t, 10000, n)

	n, err = osc.DecodeCapabilities(strings.NewReader(`<osm><api/></osm>`))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
