package mergeconf

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Namespace is the immutable result of one Parse call: one entry per
// registered item, keyed by item name. Entries keep item-registration order
// for deterministic iteration. A Namespace has no relationship to the parser
// or to other Namespace instances and is safe for concurrent reads.
type Namespace struct {
	values map[string]any
	order  []string
}

func newNamespace(values map[string]any, order []string) *Namespace {
	return &Namespace{values: values, order: order}
}

// Get returns the merged value for an item and whether the item is present.
// Items whose default is Suppress and that received no contribution are
// absent; every other registered item is present, possibly with a nil value.
func (ns *Namespace) Get(name string) (any, bool) {
	v, ok := ns.values[name]
	return v, ok
}

// Has reports whether the item is present in the result.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.values[name]
	return ok
}

// Names returns the present item names in registration order.
func (ns *Namespace) Names() []string {
	out := make([]string, len(ns.order))
	copy(out, ns.order)
	return out
}

// Len returns the number of present items.
func (ns *Namespace) Len() int { return len(ns.values) }

// String retrieves a string value, converting from common types if the
// stored value isn't already a string. A nil value is returned as "".
func (ns *Namespace) String(name string) (string, error) {
	v, ok := ns.Get(name)
	if !ok {
		return "", fmt.Errorf("config item not present: %s", name)
	}
	if v == nil {
		return "", nil
	}
	s, err := String(v)
	if err != nil {
		return "", fmt.Errorf("config item %s: %w", name, err)
	}
	return s.(string), nil
}

// Int64 retrieves an int64 value, converting from numeric types, parsable
// strings, and booleans.
func (ns *Namespace) Int64(name string) (int64, error) {
	v, ok := ns.Get(name)
	if !ok {
		return 0, fmt.Errorf("config item not present: %s", name)
	}
	if v == nil {
		return 0, fmt.Errorf("config item %s is nil, cannot convert to int64", name)
	}
	i, err := Int64(v)
	if err != nil {
		return 0, fmt.Errorf("config item %s: %w", name, err)
	}
	return i.(int64), nil
}

// Bool retrieves a boolean value, converting from numeric types (0=false,
// non-zero=true) and parsable strings.
func (ns *Namespace) Bool(name string) (bool, error) {
	v, ok := ns.Get(name)
	if !ok {
		return false, fmt.Errorf("config item not present: %s", name)
	}
	if v == nil {
		return false, fmt.Errorf("config item %s is nil, cannot convert to bool", name)
	}
	b, err := Bool(v)
	if err != nil {
		return false, fmt.Errorf("config item %s: %w", name, err)
	}
	return b.(bool), nil
}

// Float64 retrieves a float64 value, converting from numeric types,
// parsable strings, and booleans.
func (ns *Namespace) Float64(name string) (float64, error) {
	v, ok := ns.Get(name)
	if !ok {
		return 0, fmt.Errorf("config item not present: %s", name)
	}
	if v == nil {
		return 0, fmt.Errorf("config item %s is nil, cannot convert to float64", name)
	}
	f, err := Float64(v)
	if err != nil {
		return 0, fmt.Errorf("config item %s: %w", name, err)
	}
	return f.(float64), nil
}

// Slice retrieves a slice value as []any. Values produced by the append and
// extend actions are always []any; other slice kinds are converted
// element-wise.
func (ns *Namespace) Slice(name string) ([]any, error) {
	v, ok := ns.Get(name)
	if !ok {
		return nil, fmt.Errorf("config item not present: %s", name)
	}
	if out, ok := v.([]any); ok {
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("config item %s holds %T, not a slice", name, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Scan decodes the whole result into the target struct or map pointer using
// weakly typed decoding with the `config` struct tag, so string values from
// environment or command-line sources land in typed fields (durations,
// times, comma-separated slices included).
func (ns *Namespace) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be a non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHooks(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(ns.values); err != nil {
		return fmt.Errorf("failed to scan config into %T: %w", target, err)
	}
	return nil
}
