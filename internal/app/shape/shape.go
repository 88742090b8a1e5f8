/*
Package shape validates the client-defined shape-edit records carried inside chat envelopes.

The server never interprets a shape beyond this boundary check: a validated record is
forwarded to peers and storage byte-for-byte. Validation only guarantees the record
belongs to the known shape union and that its geometry is finite.
*/
package shape

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind identifies one member of the shape-edit union.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindSquare    Kind = "square"
	KindCircle    Kind = "circle"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindText      Kind = "text"
)

// knownKinds defines the set of shape kinds the canvas client can emit.
var knownKinds = map[Kind]struct{}{
	KindRectangle: {},
	KindSquare:    {},
	KindCircle:    {},
	KindLine:      {},
	KindArrow:     {},
	KindText:      {},
}

// record mirrors the client's shape structure for validation purposes only.
// Geometry fields are pointers so that absent fields are distinguishable from zero.
type record struct {
	Type   Kind     `json:"type"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Text   *string  `json:"text,omitempty"`
}

// Validate checks that raw is a well-formed shape-edit record: a known kind,
// all geometry fields present and finite, and a text body for text shapes.
// It returns a human-readable reason on failure.
func Validate(raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("shape payload is missing")
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("shape payload is not a valid object: %w", err)
	}

	if _, ok := knownKinds[rec.Type]; !ok {
		return fmt.Errorf("unknown shape kind %q", rec.Type)
	}

	geometry := map[string]*float64{
		"x":      rec.X,
		"y":      rec.Y,
		"width":  rec.Width,
		"height": rec.Height,
	}

	for name, value := range geometry {
		if value == nil {
			return fmt.Errorf("shape field %q is required", name)
		}
		if math.IsNaN(*value) || math.IsInf(*value, 0) {
			return fmt.Errorf("shape field %q must be finite", name)
		}
	}

	if rec.Type == KindText && (rec.Text == nil || *rec.Text == "") {
		return fmt.Errorf("text shapes require a non-empty %q field", "text")
	}

	return nil
}
