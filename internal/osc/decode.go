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

// Package osc reads and writes the OSM XML wire formats: element documents,
// osmChange payloads, upload diff results, and server capabilities.
package osc

import (
	"encoding/xml"
	"fmt"
	"io"

	"m4o.io/sandbox/model"
)

type xmlTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type xmlNd struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type xmlElement struct {
	XMLName   xml.Name
	ID        int64       `xml:"id,attr"`
	Version   int         `xml:"version,attr"`
	Changeset int64       `xml:"changeset,attr,omitempty"`
	Visible   string      `xml:"visible,attr,omitempty"`
	Lon       *float64    `xml:"lon,attr,omitempty"`
	Lat       *float64    `xml:"lat,attr,omitempty"`
	Tags      []xmlTag    `xml:"tag"`
	Nds       []xmlNd     `xml:"nd"`
	Members   []xmlMember `xml:"member"`
}

type osmDoc struct {
	XMLName   xml.Name     `xml:"osm"`
	Nodes     []xmlElement `xml:"node"`
	Ways      []xmlElement `xml:"way"`
	Relations []xmlElement `xml:"relation"`
}

// DecodeOSM parses an OSM XML document into a keyed element collection.
func DecodeOSM(r io.Reader) (model.Elements, error) {
	var doc osmDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse OSM document: %w", err)
	}

	es := make(model.Elements, len(doc.Nodes)+len(doc.Ways)+len(doc.Relations))
	for _, x := range doc.Nodes {
		es.Add(parseNode(x))
	}
	for _, x := range doc.Ways {
		es.Add(parseWay(x))
	}
	for _, x := range doc.Relations {
		es.Add(parseRelation(x))
	}

	return es, nil
}

func parseNode(x xmlElement) *model.Element {
	e := &model.Element{
		Kind:    model.NODE,
		ID:      model.ID(x.ID),
		Version: x.Version,
		Tags:    parseTags(x.Tags),
	}

	if x.Lon != nil && x.Lat != nil {
		lon, lat := model.Degrees(*x.Lon), model.Degrees(*x.Lat)
		e.Lon, e.Lat = &lon, &lat
	}

	return e
}

func parseWay(x xmlElement) *model.Element {
	nodeIDs := make([]model.ID, len(x.Nds))
	for i, nd := range x.Nds {
		nodeIDs[i] = model.ID(nd.Ref)
	}

	return &model.Element{
		Kind:    model.WAY,
		ID:      model.ID(x.ID),
		Version: x.Version,
		Tags:    parseTags(x.Tags),
		NodeIDs: nodeIDs,
	}
}

func parseRelation(x xmlElement) *model.Element {
	members := make([]model.Member, len(x.Members))
	for i, m := range x.Members {
		members[i] = model.Member{
			Type: model.Kind(m.Type),
			Ref:  model.ID(m.Ref),
			Role: m.Role,
		}
	}

	return &model.Element{
		Kind:    model.RELATION,
		ID:      model.ID(x.ID),
		Version: x.Version,
		Tags:    parseTags(x.Tags),
		Members: members,
	}
}

func parseTags(tags []xmlTag) map[string]string {
	if len(tags) == 0 {
		return nil
	}

	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[t.K] = t.V
	}

	return out
}

type changeIn struct {
	XMLName xml.Name `xml:"osmChange"`
	Create  struct {
		Nodes     []xmlElement `xml:"node"`
		Ways      []xmlElement `xml:"way"`
		Relations []xmlElement `xml:"relation"`
	} `xml:"create"`
}

// DecodeChange parses the create block of an osmChange payload back into a
// keyed element collection.
func DecodeChange(r io.Reader) (model.Elements, error) {
	var doc changeIn
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse osmChange document: %w", err)
	}

	es := make(model.Elements)
	for _, x := range doc.Create.Nodes {
		es.Add(parseNode(x))
	}
	for _, x := range doc.Create.Ways {
		es.Add(parseWay(x))
	}
	for _, x := range doc.Create.Relations {
		es.Add(parseRelation(x))
	}

	return es, nil
}

type diffEntry struct {
	OldID int64 `xml:"old_id,attr"`
	NewID int64 `xml:"new_id,attr"`
}

type diffResult struct {
	XMLName   xml.Name    `xml:"diffResult"`
	Nodes     []diffEntry `xml:"node"`
	Ways      []diffEntry `xml:"way"`
	Relations []diffEntry `xml:"relation"`
}

// DecodeDiff parses the diffResult of an upload call into an id remapping
// from submitted placeholder ids to real server-assigned ids.
func DecodeDiff(r io.Reader) (model.IDMap, error) {
	var doc diffResult
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse diff result: %w", err)
	}

	m := make(model.IDMap, len(doc.Nodes)+len(doc.Ways)+len(doc.Relations))
	for kind, entries := range map[model.Kind][]diffEntry{
		model.NODE:     doc.Nodes,
		model.WAY:      doc.Ways,
		model.RELATION: doc.Relations,
	} {
		for _, d := range entries {
			m[model.Ref{Kind: kind, ID: model.ID(d.OldID)}] = model.ID(d.NewID)
		}
	}

	return m, nil
}

type capabilitiesDoc struct {
	XMLName xml.Name `xml:"osm"`
	API     struct {
		Changesets struct {
			MaximumElements int `xml:"maximum_elements,attr"`
		} `xml:"changesets"`
	} `xml:"api"`
}

// DecodeCapabilities extracts the maximum number of elements a server
// accepts per changeset.  Returns 0 when the document lacks the value.
func DecodeCapabilities(r io.Reader) (int, error) {
	var doc capabilitiesDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("parse capabilities: %w", err)
	}

	return doc.API.Changesets.MaximumElements, nil
}
