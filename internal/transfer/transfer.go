// Package transfer reads and writes the JSON files a design is exchanged
// in: concrete theme configurations and resolved modification sets.
package transfer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/modification"
)

// Errors returned by the transfer functions.
var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrNotObject       = errors.New("JSON document is not an object")
	ErrInvalidFunction = errors.New("function edit is not a string")
)

// Keys of an exported modification set.
const (
	LiteralsKey  = "literals"
	FunctionsKey = "functions"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

// ExportTheme encodes a concrete configuration as indented JSON with
// sorted keys. Empty objects are kept.
func ExportTheme(tree map[string]any) ([]byte, error) {
	doc, err := writeTree([]byte("{}"), nil, tree)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(doc, prettyOptions), nil
}

// ExportModifications encodes a resolved modification set.
func ExportModifications(set modification.Set) ([]byte, error) {
	doc := []byte(`{"literals":{},"functions":{}}`)
	var err error

	for _, path := range layer.SortedPaths(set.Literals) {
		doc, err = sjson.SetBytes(doc, LiteralsKey+"."+setKey(path), set.Literals[path])
		if err != nil {
			return nil, fmt.Errorf("literal %s: %w", path, err)
		}
	}
	for _, path := range layer.SortedPaths(set.Functions) {
		doc, err = sjson.SetBytes(doc, FunctionsKey+"."+setKey(path), set.Functions[path])
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", path, err)
		}
	}
	return pretty.PrettyOptions(doc, prettyOptions), nil
}

// ImportTheme decodes a configuration document into flat literal edits,
// one per leaf.
func ImportTheme(data []byte) (map[string]any, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}
	return layer.Flatten(toTree(root)), nil
}

// ImportModifications decodes a document written by ExportModifications.
// Literal values may be nested objects; they are flattened to leaves.
func ImportModifications(data []byte) (modification.Set, error) {
	root, err := parseObject(data)
	if err != nil {
		return modification.Set{}, err
	}

	set := modification.NewSet()
	if lits := root.Get(LiteralsKey); lits.Exists() {
		if !lits.IsObject() {
			return modification.Set{}, fmt.Errorf("%s: %w", LiteralsKey, ErrNotObject)
		}
		set.Literals = modification.Normalize(toTree(lits))
	}

	if fns := root.Get(FunctionsKey); fns.Exists() {
		if !fns.IsObject() {
			return modification.Set{}, fmt.Errorf("%s: %w", FunctionsKey, ErrNotObject)
		}
		var ferr error
		fns.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.String {
				ferr = fmt.Errorf("%s: %w", key.String(), ErrInvalidFunction)
				return false
			}
			set.Functions[key.String()] = value.String()
			delete(set.Literals, key.String())
			return true
		})
		if ferr != nil {
			return modification.Set{}, ferr
		}
	}
	return set, nil
}

// Lookup returns the value at a dot-separated path of a JSON document.
func Lookup(data []byte, path string) (any, bool) {
	segments := strings.Split(path, layer.Separator)
	for i, s := range segments {
		segments[i] = escape(s)
	}
	res := gjson.GetBytes(data, strings.Join(segments, "."))
	if !res.Exists() {
		return nil, false
	}
	return toValue(res), true
}

func parseObject(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return gjson.Result{}, ErrNotObject
	}
	return root, nil
}

func writeTree(doc []byte, prefix []string, tree map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var err error
	for _, k := range keys {
		path := append(slices.Clone(prefix), setKey(k))
		joined := strings.Join(path, ".")

		switch v := tree[k].(type) {
		case map[string]any:
			if len(v) == 0 {
				doc, err = sjson.SetRawBytes(doc, joined, []byte("{}"))
			} else {
				doc, err = writeTree(doc, path, v)
			}
		default:
			doc, err = sjson.SetBytes(doc, joined, v)
		}
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", joined, err)
		}
	}
	return doc, nil
}

// setKey escapes a key for an sjson path. Numeric keys are forced to
// object keys instead of array indexes.
func setKey(key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return ":" + escape(key)
	}
	return escape(key)
}

// escape makes a single key safe for a gjson path.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toTree(obj gjson.Result) map[string]any {
	out := make(map[string]any)
	obj.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = toValue(value)
		return true
	})
	return out
}

// toValue converts a gjson result to tree data. Integral numbers become
// int64, others float64.
func toValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		return toTree(r)
	case r.IsArray():
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toValue(item)
		}
		return out
	}

	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return n
		}
		return r.Float()
	default:
		return r.String()
	}
}
