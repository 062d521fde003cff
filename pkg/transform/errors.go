package transform

import "fmt"

// Stage names used in errors and operator logs.
const (
	StageDefaults = "defaults"
	StageRequired = "required"
	StageRename   = "rename"
	StageDelete   = "delete"
	StageCast     = "cast"
)

// ValidationError reports the first required column missing from a payload.
type ValidationError struct {
	Column string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// MissingColumnError reports a rename, delete or cast rule whose target
// column is not present in the payload.
type MissingColumnError struct {
	Column string
	Stage  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not found", e.Stage, e.Column)
}

// CastError reports a value that could not be converted to its target type.
// The value itself is deliberately not included: payloads may be sensitive.
type CastError struct {
	Column string
	Type   string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast: column %q is not convertible to %s", e.Column, e.Type)
}
