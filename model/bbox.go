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
	"fmt"
	"strings"
)

const (
	MaxLat Degrees = 90.0
	MaxLon Degrees = 180.0
	MinLat Degrees = -90.0
	MinLon Degrees = -180.0
)

// BoundingBox is a geographic rectangle, corners in decimal degrees.
type BoundingBox struct {
	Left   Degrees // minimum longitude
	Bottom Degrees // minimum latitude
	Right  Degrees // maximum longitude
	Top    Degrees // maximum latitude
}

// ParseBoundingBox parses a "minlon,minlat,maxlon,maxlat" string.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("please specify four numbers for the bbox, got %q", s)
	}

	var vals [4]Degrees
	for i, p := range parts {
		d, err := ParseDegrees(strings.TrimSpace(p))
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bad bbox coordinate %q: %w", p, err)
		}
		vals[i] = d
	}

	return BoundingBox{Left: vals[0], Bottom: vals[1], Right: vals[2], Top: vals[3]}, nil
}

// Normalize returns the box with min/max ordering restored on each axis.
func (b BoundingBox) Normalize() BoundingBox {
	if b.Left > b.Right {
		b.Left, b.Right = b.Right, b.Left
	}
	if b.Bottom > b.Top {
		b.Bottom, b.Top = b.Top, b.Bottom
	}

	return b
}

// Area returns the area of the box in square degrees.
func (b BoundingBox) Area() float64 {
	return float64(b.Right-b.Left) * float64(b.Top-b.Bottom)
}

// Quarter splits the box at its midpoints into four quadrants.  The quadrants
// do not overlap, leave no gaps, and their union reconstructs the box exactly.
func (b BoundingBox) Quarter() [4]BoundingBox {
	halfX := (b.Left + b.Right) / 2
	halfY := (b.Bottom + b.Top) / 2

	return [4]BoundingBox{
		{Left: b.Left, Bottom: b.Bottom, Right: halfX, Top: halfY},
		{Left: b.Left, Bottom: halfY, Right: halfX, Top: b.Top},
		{Left: halfX, Bottom: b.Bottom, Right: b.Right, Top: halfY},
		{Left: halfX, Bottom: halfY, Right: b.Right, Top: b.Top},
	}
}

// Contains checks if the bounding box contains the lon lat point.  The
// rectangle is closed on all edges.
func (b BoundingBox) Contains(lon, lat Degrees) bool {
	return b.Left <= lon && lon <= b.Right && b.Bottom <= lat && lat <= b.Top
}

// EqualWithin checks if two bounding boxes are within a specific epsilon.
func (b BoundingBox) EqualWithin(o BoundingBox, eps Epsilon) bool {
	return b.Left.EqualWithin(o.Left, eps) &&
		b.Right.EqualWithin(o.Right, eps) &&
		b.Top.EqualWithin(o.Top, eps) &&
		b.Bottom.EqualWithin(o.Bottom, eps)
}

// Query renders the box as the minlon,minlat,maxlon,maxlat form the map
// endpoint expects.
func (b BoundingBox) Query() string {
	return fmt.Sprintf("%s,%s,%s,%s",
		ftoa(float64(b.Left)), ftoa(float64(b.Bottom)),
		ftoa(float64(b.Right)), ftoa(float64(b.Top)))
}

// OverpassQuery renders the box as the minlat,minlon,maxlat,maxlon form the
// Overpass bbox setting expects.
func (b BoundingBox) OverpassQuery() string {
	return fmt.Sprintf("%s,%s,%s,%s",
		ftoa(float64(b.Bottom)), ftoa(float64(b.Left)),
		ftoa(float64(b.Top)), ftoa(float64(b.Right)))
}

func (b BoundingBox) String() string {
	return "[" + b.Query() + "]"
}
