// Package transform implements the schema-driven stages applied to one
// decoded record payload, and the pipeline that composes them.
//
// All stages operate on a map[string]any payload in place. The payload is
// scoped to a single record and never aliased across records, so in-place
// mutation is safe; the caller re-decodes the original body when a stage
// fails, which discards any partial changes.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/streamshape/streamshape/pkg/schema"
)

// FillDefaults inserts a default value for each column that is absent from
// the payload. Existing values are never overwritten, which also makes the
// stage idempotent. Runs before validation and renaming, so defaults are
// keyed by original column names.
func FillDefaults(payload map[string]any, defaults map[string]any) {
	for column, value := range defaults {
		if _, ok := payload[column]; !ok {
			payload[column] = value
		}
	}
}

// CheckRequired verifies every required column is present, by exact
// case-sensitive name. Read-only. Columns that a later rename rule consumes
// do not need to be listed here: a missing source is caught by the renamer.
func CheckRequired(payload map[string]any, required []string) error {
	for _, column := range required {
		if _, ok := payload[column]; !ok {
			return &ValidationError{Column: column}
		}
	}
	return nil
}

// RenameColumns applies the rename rules in their declared order. A rule
// whose old name contains a single dot addresses one level of nesting:
// "outer.inner" moves the inner key out of the nested object up to the top
// level under the new name. Columns move rather than copy, so a later rule
// referencing an already-renamed old name fails with MissingColumnError.
func RenameColumns(payload map[string]any, renames []schema.Rename) error {
	for _, r := range renames {
		segments := strings.Split(r.From, ".")
		switch len(segments) {
		case 1:
			value, ok := payload[r.From]
			if !ok {
				return &MissingColumnError{Column: r.From, Stage: StageRename}
			}
			delete(payload, r.From)
			payload[r.To] = value
		case 2:
			outer, ok := payload[segments[0]]
			if !ok {
				return &MissingColumnError{Column: r.From, Stage: StageRename}
			}
			nested, ok := outer.(map[string]any)
			if !ok {
				return fmt.Errorf("rename %q: column %q is not an object", r.From, segments[0])
			}
			value, ok := nested[segments[1]]
			if !ok {
				return &MissingColumnError{Column: r.From, Stage: StageRename}
			}
			delete(nested, segments[1])
			payload[r.To] = value
		default:
			return fmt.Errorf("rename %q: at most one nesting level is supported", r.From)
		}
	}
	return nil
}

// DeleteColumns removes each named top-level column. Nested deletion is not
// supported.
func DeleteColumns(payload map[string]any, columns []string) error {
	for _, column := range columns {
		if _, ok := payload[column]; !ok {
			return &MissingColumnError{Column: column, Stage: StageDelete}
		}
		delete(payload, column)
	}
	return nil
}

// CastValues converts column values to their target types from the closed
// registry. Runs after renaming, so the cast map uses current column names.
func CastValues(payload map[string]any, casts map[string]schema.CastType) error {
	for column, target := range casts {
		value, ok := payload[column]
		if !ok {
			return &MissingColumnError{Column: column, Stage: StageCast}
		}
		converted, err := castValue(value, target)
		if err != nil {
			return &CastError{Column: column, Type: string(target)}
		}
		payload[column] = converted
	}
	return nil
}

var errNotConvertible = fmt.Errorf("not convertible")

// castValue dispatches on the registry type. JSON decoding yields string,
// float64, bool, nil, map and slice values; int64 and time.Time can appear
// when a column is cast twice.
func castValue(value any, target schema.CastType) (any, error) {
	switch target {
	case schema.CastInteger:
		return castInteger(value)
	case schema.CastFloat:
		return castFloat(value)
	case schema.CastString:
		return castString(value)
	case schema.CastBoolean:
		return castBoolean(value)
	case schema.CastTimestamp:
		return castTimestamp(value)
	default:
		// Unknown names are rejected at schema load; this is unreachable
		// for schemas that came through schema.Parse.
		return nil, fmt.Errorf("unknown cast type %q", target)
	}
}

func castInteger(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errNotConvertible
		}
		return n, nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, errNotConvertible
	}
}

func castFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errNotConvertible
		}
		return f, nil
	default:
		return nil, errNotConvertible
	}
}

func castString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, errNotConvertible
	}
}

func castBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errNotConvertible
		}
		return b, nil
	case float64:
		return v != 0, nil
	default:
		return nil, errNotConvertible
	}
}

// castTimestamp accepts RFC 3339 strings and numeric Unix epoch values.
// Numbers are read as milliseconds, the resolution the delivery stream uses
// for arrival timestamps.
func castTimestamp(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errNotConvertible
		}
		return t, nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	default:
		return nil, errNotConvertible
	}
}
