package app

import (
	"context"
	"strings"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/modification"
)

// Field is the editor view of one configuration path.
type Field struct {
	// Path is the unqualified tree path.
	Path string

	// Value is the live preview value at Path.
	Value any

	// Function is the committed function source when
	// IsControlledByFunction is set.
	Function string

	// IsControlledByFunction is true exactly when Path is in the committed
	// functions bucket. Literal writes are refused while it is set.
	IsControlledByFunction bool

	// IsOverridden is true when an edit exists at or beneath Path.
	IsOverridden bool

	editor *Editor
}

// SetValue writes v at the field path.
func (f Field) SetValue(v any) error {
	return f.editor.SetValue(f.Path, v)
}

// ResetToBase removes the edits at and beneath the field path.
func (f Field) ResetToBase() error {
	return f.editor.ResetToBase(f.Path)
}

// Field returns the field at path.
func (e *Editor) Field(ctx context.Context, path string) (Field, error) {
	if err := validPath(path); err != nil {
		return Field{}, err
	}

	tree, err := e.Preview(ctx)
	if err != nil {
		return Field{}, err
	}

	f := Field{Path: path, editor: e}
	f.Value, _ = layer.GetByPath(tree, path)

	state := e.store.State()
	committed := state.Resolved.ForScheme(state.ColorScheme)
	if src, ok := committed.Functions[path]; ok {
		f.Function = src
		f.IsControlledByFunction = true
	}

	raw := modification.ForScheme(modification.Normalize(e.store.Raw()), state.ColorScheme)
	for p := range raw {
		if layer.HasPrefix(p, path) {
			f.IsOverridden = true
			break
		}
	}
	return f, nil
}

// SetValue writes v into the raw buffer at path. Literal writes to a path
// controlled by a committed function are refused with
// ErrFunctionControlled; function sources are always accepted.
func (e *Editor) SetValue(path string, v any) error {
	if err := e.checkWrite(path, v); err != nil {
		return err
	}
	e.store.SetRawModificationAtPath(path, v)
	return nil
}

// ScheduleValue is SetValue batched to the next frame.
func (e *Editor) ScheduleValue(path string, v any) error {
	if err := e.checkWrite(path, v); err != nil {
		return err
	}
	e.store.ScheduleRawModification(path, v)
	return nil
}

// ResetToBase removes the edits at and beneath path so the lower layers
// show through.
func (e *Editor) ResetToBase(path string) error {
	if err := validPath(path); err != nil {
		return err
	}
	e.store.RemoveModificationAtPath(path)
	return nil
}

func (e *Editor) checkWrite(path string, v any) error {
	if err := validPath(path); err != nil {
		return err
	}
	if !modification.IsData(v) {
		return NewOperationError("set", path, ErrInvalidValue)
	}
	state := e.store.State()
	committed := state.Resolved.ForScheme(state.ColorScheme)
	if committed.IsFunction(path) && !e.resolver.Classifier().IsFunction(v) {
		return NewOperationError("set", path, ErrFunctionControlled)
	}
	return nil
}

// validPath rejects malformed paths and paths under the scheme qualifier,
// which only the store writes.
func validPath(path string) error {
	if path == "" || strings.HasPrefix(path, layer.Separator) ||
		strings.HasSuffix(path, layer.Separator) || strings.Contains(path, "..") ||
		layer.Root(path) == modification.SchemesKey {
		return NewOperationError("path", path, ErrInvalidPath)
	}
	return nil
}
