package transform

import "github.com/streamshape/streamshape/pkg/schema"

// Pipeline applies a schema's stages to one payload in a fixed order:
// defaults → required → rename → delete → cast. The order is load-bearing:
// defaults must exist before validation, and renames must happen before
// deletes and casts reference the new names. A stage whose schema section is
// empty is skipped.
type Pipeline struct {
	schema *schema.Schema
}

func New(s *schema.Schema) *Pipeline {
	return &Pipeline{schema: s}
}

// Run transforms the payload in place. The first stage failure aborts the
// run and is returned as-is; callers that need the untouched record must
// keep the original encoded body, since the payload may have been partially
// mutated by earlier stages.
func (p *Pipeline) Run(payload map[string]any) error {
	s := p.schema

	if len(s.Defaults) > 0 {
		FillDefaults(payload, s.Defaults)
	}
	if len(s.Required) > 0 {
		if err := CheckRequired(payload, s.Required); err != nil {
			return err
		}
	}
	if len(s.Renames) > 0 {
		if err := RenameColumns(payload, s.Renames); err != nil {
			return err
		}
	}
	if len(s.Deletes) > 0 {
		if err := DeleteColumns(payload, s.Deletes); err != nil {
			return err
		}
	}
	if len(s.Casts) > 0 {
		if err := CastValues(payload, s.Casts); err != nil {
			return err
		}
	}
	return nil
}
