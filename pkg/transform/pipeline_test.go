package transform

import (
	"errors"
	"reflect"
	"testing"

	"github.com/streamshape/streamshape/pkg/schema"
)

func TestPipelineEmptySchemaIsNoOp(t *testing.T) {
	payload := map[string]any{"a": "1", "nested": map[string]any{"b": "2"}}
	original := map[string]any{"a": "1", "nested": map[string]any{"b": "2"}}

	if err := New(&schema.Schema{}).Run(payload); err != nil {
		t.Fatalf("Empty schema must be a no-op, got %v", err)
	}
	if !reflect.DeepEqual(payload, original) {
		t.Errorf("Payload changed: %v", payload)
	}
}

func TestPipelineStageOrder(t *testing.T) {
	// Defaults fill before validation; rename happens before delete and
	// cast, which address the renamed names.
	s := &schema.Schema{
		Defaults: map[string]any{"filled": "by-default"},
		Required: []string{"filled", "amount"},
		Renames:  []schema.Rename{{From: "amount", To: "total"}},
		Deletes:  []string{"filled"},
		Casts:    map[string]schema.CastType{"total": schema.CastInteger},
	}

	payload := map[string]any{"amount": "100"}
	if err := New(s).Run(payload); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	expected := map[string]any{"total": int64(100)}
	if !reflect.DeepEqual(payload, expected) {
		t.Errorf("Expected %v, got %v", expected, payload)
	}
}

func TestPipelineCastSeesRenamedNameOnly(t *testing.T) {
	renameThenCastNew := &schema.Schema{
		Renames: []schema.Rename{{From: "a", To: "b"}},
		Casts:   map[string]schema.CastType{"b": schema.CastInteger},
	}
	payload := map[string]any{"a": "1"}
	if err := New(renameThenCastNew).Run(payload); err != nil {
		t.Fatalf("Cast by new name must succeed, got %v", err)
	}
	if payload["b"] != int64(1) {
		t.Errorf("Expected b=1, got %v", payload)
	}

	renameThenCastOld := &schema.Schema{
		Renames: []schema.Rename{{From: "a", To: "b"}},
		Casts:   map[string]schema.CastType{"a": schema.CastInteger},
	}
	err := New(renameThenCastOld).Run(map[string]any{"a": "1"})
	var mErr *MissingColumnError
	if !errors.As(err, &mErr) {
		t.Fatalf("Cast by old name must fail with MissingColumnError, got %v", err)
	}
	if mErr.Column != "a" {
		t.Errorf("Expected column \"a\", got %q", mErr.Column)
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	s := &schema.Schema{
		Defaults: map[string]any{"d": float64(1)},
		Required: []string{"a"},
		Renames:  []schema.Rename{{From: "a", To: "b"}},
		Casts:    map[string]schema.CastType{"b": schema.CastFloat},
	}
	pipeline := New(s)

	var first map[string]any
	for i := 0; i < 10; i++ {
		payload := map[string]any{"a": "2.5", "extra": "kept"}
		if err := pipeline.Run(payload); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
		if first == nil {
			first = payload
			continue
		}
		if !reflect.DeepEqual(payload, first) {
			t.Fatalf("Run %d diverged: %v vs %v", i, payload, first)
		}
	}
}

func TestPipelineFailureKindIsStable(t *testing.T) {
	s := &schema.Schema{Required: []string{"missing"}}
	pipeline := New(s)

	for i := 0; i < 5; i++ {
		err := pipeline.Run(map[string]any{"a": "1"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Run %d: expected ValidationError, got %v", i, err)
		}
	}
}
