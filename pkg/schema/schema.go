// Package schema defines the per-process transformation schema: which
// defaults to fill, which columns are required, how columns are renamed,
// deleted and cast. Schemas are validated structurally at load time so that
// a bad schema never surfaces as a per-record error.
package schema

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var jsonFast = jsoniter.ConfigFastest

// CastType names a conversion from the closed cast registry. Resolving a
// cast by name never evaluates anything; unknown names are rejected here,
// at load time.
type CastType string

const (
	CastInteger   CastType = "integer"
	CastFloat     CastType = "float"
	CastString    CastType = "string"
	CastBoolean   CastType = "boolean"
	CastTimestamp CastType = "timestamp"
)

// ParseCastType validates a cast-type name against the registry.
func ParseCastType(name string) (CastType, error) {
	switch t := CastType(name); t {
	case CastInteger, CastFloat, CastString, CastBoolean, CastTimestamp:
		return t, nil
	default:
		return "", fmt.Errorf("unknown cast type %q", name)
	}
}

// Rename is one old-name → new-name rule. From may address one level of
// nesting as "outer.inner".
type Rename struct {
	From string
	To   string
}

// Schema holds the transformation rules for one process. Every section is
// optional; an absent section disables its stage. A Schema is read-only
// after Parse, so it is safe to share across concurrent invocations.
type Schema struct {
	// Defaults inserts a value for a column only when that column is absent.
	// Keyed by original column names: defaults run before renaming.
	Defaults map[string]any
	// Required lists columns that must be present after defaults are filled.
	Required []string
	// Renames keeps the schema document's declared order. Order is
	// load-bearing: columns move rather than copy, so a later rule that
	// references an already-renamed name fails.
	Renames []Rename
	// Deletes removes top-level columns.
	Deletes []string
	// Casts converts column values using the registry types above. Applied
	// after renaming, so keys are the current (possibly renamed) names.
	Casts map[string]CastType
}

// document is the raw JSON shape of a schema file. Unknown sections are
// ignored. rename_columns stays raw so its key order can be preserved.
type document struct {
	Defaults map[string]any    `json:"insert_value_if_column_missing"`
	Required []string          `json:"required_columns"`
	Renames  json.RawMessage   `json:"rename_columns"`
	Deletes  []string          `json:"delete_columns"`
	Casts    map[string]string `json:"cast_values"`
}

// Parse decodes and validates a schema document.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := jsonFast.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed schema document: %w", err)
	}

	renames, err := parseRenames(doc.Renames)
	if err != nil {
		return nil, fmt.Errorf("rename_columns: %w", err)
	}

	var casts map[string]CastType
	if doc.Casts != nil {
		casts = make(map[string]CastType, len(doc.Casts))
		for column, name := range doc.Casts {
			t, parseErr := ParseCastType(name)
			if parseErr != nil {
				return nil, fmt.Errorf("cast_values[%s]: %w", column, parseErr)
			}
			casts[column] = t
		}
	}

	return &Schema{
		Defaults: doc.Defaults,
		Required: doc.Required,
		Renames:  renames,
		Deletes:  doc.Deletes,
		Casts:    casts,
	}, nil
}

// parseRenames walks the rename_columns object token by token so the rules
// come out in document order. A plain Go map would lose it.
func parseRenames(raw json.RawMessage) ([]Rename, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	iter := jsoniter.ParseBytes(jsonFast, raw)
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		return nil, nil
	case jsoniter.ObjectValue:
		// fallthrough to the walk below
	default:
		return nil, fmt.Errorf("must be an object of old name → new name")
	}

	var (
		renames []Rename
		walkErr error
	)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, oldName string) bool {
		if it.WhatIsNext() != jsoniter.StringValue {
			walkErr = fmt.Errorf("new name for %q must be a string", oldName)
			return false
		}
		renames = append(renames, Rename{From: oldName, To: it.ReadString()})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if iter.Error != nil {
		return nil, iter.Error
	}
	return renames, nil
}
