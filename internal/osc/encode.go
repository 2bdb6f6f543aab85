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

package osc

import (
	"encoding/xml"
	"io"

	"m4o.io/sandbox/model"
)

const (
	// Version is the OSM API version stamped on change payloads.
	Version = "0.6"

	// Generator labels changesets and payloads produced by this tool.
	Generator = "osm-sandbox 1.0"
)

// A change payload carries exactly one create or one delete block, never both.
type changeDoc struct {
	XMLName   xml.Name     `xml:"osmChange"`
	Version   string       `xml:"version,attr"`
	Generator string       `xml:"generator,attr"`
	Create    *createBlock `xml:"create,omitempty"`
	Delete    *deleteBlock `xml:"delete,omitempty"`
}

type createBlock struct {
	Elements []xmlElement
}

type deleteBlock struct {
	// if-unused makes the server silently skip, rather than fail, any
	// element still referenced from outside the batch.
	IfUnused string `xml:"if-unused,attr"`
	Elements []xmlStub
}

// xmlStub is the deletion record: identity and version only, no geometry
// or children.
type xmlStub struct {
	XMLName   xml.Name
	ID        int64  `xml:"id,attr"`
	Version   int    `xml:"version,attr"`
	Changeset int64  `xml:"changeset,attr"`
	Visible   string `xml:"visible,attr"`
}

// EncodeCreate renders a create payload for one batch within the changeset.
func EncodeCreate(changeset int64, els []*model.Element) ([]byte, error) {
	doc := changeDoc{
		Version:   Version,
		Generator: Generator,
		Create:    &createBlock{Elements: make([]xmlElement, len(els))},
	}

	for i, e := range els {
		doc.Create.Elements[i] = encodeElement(e, changeset)
	}

	return marshal(doc)
}

// EncodeDelete renders a delete payload for one batch within the changeset,
// with the if-unused safety flag set.
func EncodeDelete(changeset int64, els []*model.Element) ([]byte, error) {
	doc := changeDoc{
		Version:   Version,
		Generator: Generator,
		Delete:    &deleteBlock{IfUnused: "true", Elements: make([]xmlStub, len(els))},
	}

	for i, e := range els {
		doc.Delete.Elements[i] = xmlStub{
			XMLName:   xml.Name{Local: string(e.Kind)},
			ID:        int64(e.ID),
			Version:   e.Version,
			Changeset: changeset,
			Visible:   "false",
		}
	}

	return marshal(doc)
}

// WriteChange renders a create payload to w as a standalone osmChange
// document, using a fixed changeset id of 1.
func WriteChange(w io.Writer, els []*model.Element) error {
	b, err := EncodeCreate(1, els)
	if err != nil {
		return err
	}

	_, err = w.Write(b)

	return err
}

type changesetDoc struct {
	XMLName   xml.Name `xml:"osm"`
	Changeset struct {
		Tags []xmlTag `xml:"tag"`
	} `xml:"changeset"`
}

// EncodeChangeset renders the changeset/create payload carrying the comment
// and generator tags.
func EncodeChangeset(comment string) ([]byte, error) {
	var doc changesetDoc
	doc.Changeset.Tags = []xmlTag{
		{K: "comment", V: comment},
		{K: "created_by", V: Generator},
	}

	return marshal(doc)
}

func encodeElement(e *model.Element, changeset int64) xmlElement {
	x := xmlElement{
		XMLName:   xml.Name{Local: string(e.Kind)},
		ID:        int64(e.ID),
		Version:   e.Version,
		Changeset: changeset,
		Visible:   "true",
	}

	if e.Lon != nil && e.Lat != nil {
		lon, lat := float64(*e.Lon), float64(*e.Lat)
		x.Lon, x.Lat = &lon, &lat
	}

	for k, v := range e.Tags {
		x.Tags = append(x.Tags, xmlTag{K: k, V: v})
	}

	for _, ref := range e.NodeIDs {
		x.Nds = append(x.Nds, xmlNd{Ref: int64(ref)})
	}

	for _, m := range e.Members {
		x.Members = append(x.Members, xmlMember{Type: string(m.Type), Ref: int64(m.Ref), Role: m.Role})
	}

	return x
}

func marshal(doc any) ([]byte, error) {
	b, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), b...), nil
}
