package mergeconf

import (
	"fmt"
	"reflect"
)

// Source produces raw configuration values from one external origin. Load
// receives a read-only view of the registered item specs and returns a
// partial mapping from item name to the ordered raw values this source
// contributes; absent keys mean no contribution. Load must be a pure
// function of the specs and the source's external input: repeated calls
// against unchanged input must produce the same result.
//
// Sources are unaware of each other; cross-source precedence is established
// entirely by the parser. A Load failure aborts the parse, wrapped in a
// *SourceError carrying the source's registered name.
type Source interface {
	// Name identifies the source for error reporting and per-item source
	// filters. It can be overridden at registration with SourceAs.
	Name() string

	Load(specs []*ItemSpec) (map[string][]any, error)
}

// contributionsFromValue expands one structured value (from a map or a
// config file) into the contribution sequence for an item. A recognized
// none-value becomes a single Presence mention; for a presence-only item any
// other value is an error. For value items a slice fans out into one
// contribution per element, so repeated mentions survive the round trip
// through a map or file; anything else is a single contribution.
func contributionsFromValue(spec *ItemSpec, value any, noneValues []any) ([]any, error) {
	if isNoneValue(value, noneValues) {
		return []any{Presence}, nil
	}
	if !spec.TakesValue() {
		return nil, fmt.Errorf("invalid value '%v' for presence-only config item %q", value, spec.Name())
	}
	if _, ok := value.([]byte); ok {
		return []any{value}, nil
	}
	rv := reflect.ValueOf(value)
	if value != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return []any{value}, nil
}

func isNoneValue(value any, noneValues []any) bool {
	for _, nv := range noneValues {
		if reflect.DeepEqual(value, nv) {
			return true
		}
	}
	return false
}

// defaultNoneValues are the values MapSource and FileSource read as
// mention-without-value: nil (JSON null, absent map value) and the Presence
// marker itself.
func defaultNoneValues() []any {
	return []any{nil, Presence}
}

// MapSource contributes values from an in-memory map keyed by item name.
// It is the simplest source and the reference implementation of the
// contract; tests and embedders use it to inject fixed configuration.
type MapSource struct {
	values     map[string]any
	noneValues []any
}

// MapOption configures a MapSource.
type MapOption func(*MapSource)

// MapNoneValues replaces the set of values treated as mention-without-value
// for presence-only items. Pass only Presence to make nil a regular value.
func MapNoneValues(vals ...any) MapOption {
	return func(s *MapSource) { s.noneValues = append([]any(nil), vals...) }
}

// NewMapSource creates a source backed by the given map. The map is not
// copied; the caller must not mutate it during Parse.
func NewMapSource(values map[string]any, opts ...MapOption) *MapSource {
	s := &MapSource{values: values, noneValues: defaultNoneValues()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "map".
func (s *MapSource) Name() string { return "map" }

// Load reports one entry per registered item present in the map.
func (s *MapSource) Load(specs []*ItemSpec) (map[string][]any, error) {
	out := make(map[string][]any)
	for _, spec := range specs {
		value, ok := s.values[spec.Name()]
		if !ok {
			continue
		}
		contribs, err := contributionsFromValue(spec, value, s.noneValues)
		if err != nil {
			return nil, err
		}
		out[spec.Name()] = contribs
	}
	return out, nil
}
