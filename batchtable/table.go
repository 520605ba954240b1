// Package batchtable implements the read-only batch table view of a tile:
// named per-feature attribute arrays keyed by batch id, used downstream for
// styling and picking.
//
// Only the JSON section is consumed. The binary batch table section is
// deliberately skipped, never parsed; JSON values of the binary-reference
// shape {"byteOffset": N} are therefore treated as absent.
package batchtable

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Table is a read-only batch table. The zero value behaves as an empty table.
type Table struct {
	properties map[string][]any
	length     int
}

// Parse parses batch table JSON for a tile with featuresLength features.
// Attribute arrays longer than featuresLength are rejected; shorter arrays
// are allowed and the missing tail reads as absent.
//
// Returns:
//   - *Table: parsed table; empty (never nil) when jsonData is empty
//   - error: JSON syntax errors or an oversized attribute array
func Parse(jsonData []byte, featuresLength int) (*Table, error) {
	t := &Table{length: featuresLength}
	if len(jsonData) == 0 {
		return t, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, fmt.Errorf("batch table JSON: %w", err)
	}

	t.properties = make(map[string][]any, len(raw))
	for name, msg := range raw {
		var arr []any
		if err := json.Unmarshal(msg, &arr); err != nil {
			// Binary-reference objects land here; the binary section is out
			// of scope, so the property is simply not exposed.
			continue
		}
		if len(arr) > featuresLength {
			return nil, fmt.Errorf("batch table property %q has %d values for %d features",
				name, len(arr), featuresLength)
		}
		t.properties[name] = arr
	}

	return t, nil
}

// Length returns the feature count the table was parsed against.
func (t *Table) Length() int {
	return t.length
}

// PropertyNames returns the exposed attribute names in sorted order.
func (t *Table) PropertyNames() []string {
	names := make([]string, 0, len(t.properties))
	for name := range t.properties {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Property returns the attribute value of the feature with the given batch
// id, and whether it is present.
func (t *Table) Property(name string, batchID int) (any, bool) {
	arr, ok := t.properties[name]
	if !ok || batchID < 0 || batchID >= len(arr) {
		return nil, false
	}

	return arr[batchID], true
}
