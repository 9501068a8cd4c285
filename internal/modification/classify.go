package modification

import (
	"reflect"
	"strings"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
)

// Recognizer reports whether a string edit is function source rather than
// a literal string value.
type Recognizer func(src string) bool

// Classifier splits flat edit sets into literals and functions.
type Classifier struct {
	recognize Recognizer
	log       *logging.Logger
}

// NewClassifier creates a classifier. A nil recognizer treats only Code
// values as functions.
func NewClassifier(recognize Recognizer, log *logging.Logger) *Classifier {
	if recognize == nil {
		recognize = func(string) bool { return false }
	}
	return &Classifier{recognize: recognize, log: log.WithComponent("classifier")}
}

// Classify splits a flat edit set. Map values are flattened first so every
// resulting path is a leaf and no path is a prefix of another. Every path
// lands in exactly one bucket.
func (c *Classifier) Classify(flat map[string]any) Set {
	out := NewSet()
	for path, v := range Normalize(flat) {
		if src, ok := c.functionSource(v); ok {
			out.Functions[path] = src
			continue
		}
		if !isLiteral(v) {
			c.log.Warn("ambiguous edit value kept as literal", "path", path, "type", reflect.TypeOf(v).String())
		}
		out.Literals[path] = v
	}
	return out
}

// IsFunction reports whether a single edit value would be classified as a
// function.
func (c *Classifier) IsFunction(v any) bool {
	_, ok := c.functionSource(v)
	return ok
}

func (c *Classifier) functionSource(v any) (string, bool) {
	switch t := v.(type) {
	case Code:
		return string(t), true
	case string:
		if c.recognize(t) {
			return strings.TrimSpace(t), true
		}
	}
	return "", false
}

// Normalize expands and re-flattens an edit set so that map values become
// individual leaf paths and prefix conflicts are resolved in favor of the
// deeper path.
func Normalize(flat map[string]any) map[string]any {
	return layer.Flatten(layer.Expand(flat))
}

// IsData reports whether v can be stored as an edit: function source or
// JSON-compatible data. Go funcs, channels and other in-memory values are
// not.
func IsData(v any) bool {
	switch t := v.(type) {
	case Code:
		return true
	case []any:
		for _, e := range t {
			if !IsData(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !IsData(e) {
				return false
			}
		}
		return true
	}
	return isLiteral(v)
}

// isLiteral reports whether v is JSON-compatible data.
func isLiteral(v any) bool {
	switch t := v.(type) {
	case nil, bool, string, float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case []any:
		for _, e := range t {
			if !isLiteral(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !isLiteral(e) {
				return false
			}
		}
		return true
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
