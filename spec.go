package mergeconf

import (
	"fmt"
	"reflect"
)

type presenceMarker struct{}

func (presenceMarker) String() string { return "PRESENT" }

// Presence is the raw value sources use to report that an item was mentioned
// without a value: a bare command-line flag, a null in a config file, an
// environment variable set to the empty string. Presence-counting actions
// (store_const, store_true, store_false, count) treat it like any other
// contribution; value-bearing actions reject it with a ConversionError.
var Presence = presenceMarker{}

type suppressMarker struct{}

func (suppressMarker) String() string { return "SUPPRESS" }

// Suppress, used as an item's default, means that an item with no
// contribution from any source gets no entry in the Namespace at all,
// instead of an entry holding the default.
var Suppress = suppressMarker{}

// ItemSpec is the immutable description of one configuration item. Specs are
// created by Parser.AddItem and owned by the parser's registry; sources
// receive them as a read-only view.
type ItemSpec struct {
	name       string
	required   bool
	def        any
	hasDefault bool
	actionName string
	action     Action
	typ        ConvertFunc
	elemTyp    ConvertFunc
	constVal   any
	hasConst   bool
	choices    []any
	include    []string
	exclude    []string
}

// Name returns the item's unique name, which is also its key in source
// contributions and in the parsed Namespace.
func (s *ItemSpec) Name() string { return s.name }

// Required reports whether the item must receive a contribution from at
// least one source.
func (s *ItemSpec) Required() bool { return s.required }

// Default returns the item's default value and whether one was set
// explicitly.
func (s *ItemSpec) Default() (any, bool) { return s.def, s.hasDefault }

// ActionName returns the registered name of the item's action, or "" for a
// custom Action supplied directly.
func (s *ItemSpec) ActionName() string { return s.actionName }

// Const returns the constant stored by the store_const action family.
func (s *ItemSpec) Const() any { return s.constVal }

// Choices returns the permitted values for the item, nil if unrestricted.
func (s *ItemSpec) Choices() []any {
	if s.choices == nil {
		return nil
	}
	out := make([]any, len(s.choices))
	copy(out, s.choices)
	return out
}

// TakesValue reports whether contributions for this item carry values.
// Presence-only actions (store_const, store_true, store_false, count) ignore
// contributed values and care only that the item was mentioned; sources such
// as FlagSource use this to decide whether a flag consumes an argument.
func (s *ItemSpec) TakesValue() bool {
	switch s.actionName {
	case "store_const", "store_true", "store_false", "count":
		return false
	}
	return true
}

// convert coerces one raw contribution through the item's type converter and
// validates it against the item's choices. Called by value-bearing actions
// for each contribution independently.
func (s *ItemSpec) convert(raw any) (any, error) {
	return s.convertWith(s.typ, raw)
}

// convertElem is convert with the element converter, used by extend for the
// members of sequence contributions. Falls back to the item converter.
func (s *ItemSpec) convertElem(raw any) (any, error) {
	if s.elemTyp != nil {
		return s.convertWith(s.elemTyp, raw)
	}
	return s.convertWith(s.typ, raw)
}

func (s *ItemSpec) convertWith(fn ConvertFunc, raw any) (any, error) {
	if _, ok := raw.(presenceMarker); ok {
		return nil, &ConversionError{Item: s.name, Raw: raw,
			Err: fmt.Errorf("item was mentioned without a value")}
	}
	v, err := fn(raw)
	if err != nil {
		return nil, &ConversionError{Item: s.name, Raw: raw, Err: err}
	}
	if s.choices != nil {
		ok := false
		for _, c := range s.choices {
			if reflect.DeepEqual(v, c) {
				ok = true
				break
			}
		}
		if !ok {
			return nil, &ChoiceError{Item: s.name, Value: v, Choices: s.Choices()}
		}
	}
	return v, nil
}

// allowsSource applies the item's include/exclude source filters.
func (s *ItemSpec) allowsSource(name string) bool {
	if s.exclude != nil {
		for _, n := range s.exclude {
			if n == name {
				return false
			}
		}
		return true
	}
	if s.include != nil {
		for _, n := range s.include {
			if n == name {
				return true
			}
		}
		return false
	}
	return true
}

// ItemOption configures one configuration item at registration time.
type ItemOption func(*ItemSpec) error

// Required marks the item as mandatory: Parse fails with a
// MissingRequiredError if no source contributes a value for it. Mutually
// exclusive with WithDefault.
func Required() ItemOption {
	return func(s *ItemSpec) error {
		s.required = true
		return nil
	}
}

// WithDefault sets the value used when no source contributes to the item.
// The default is used as-is; it does not pass through the item's converter.
func WithDefault(v any) ItemOption {
	return func(s *ItemSpec) error {
		s.def = v
		s.hasDefault = true
		return nil
	}
}

// WithType sets the converter applied to each raw contributed value before
// the item's action combines them. The default is Identity.
func WithType(fn ConvertFunc) ItemOption {
	return func(s *ItemSpec) error {
		if fn == nil {
			return fmt.Errorf("type converter cannot be nil")
		}
		s.typ = fn
		return nil
	}
}

// WithElementType sets the converter for the members of sequence
// contributions accumulated by the extend action. Without it, extend falls
// back to the item's converter.
func WithElementType(fn ConvertFunc) ItemOption {
	return func(s *ItemSpec) error {
		if fn == nil {
			return fmt.Errorf("element type converter cannot be nil")
		}
		s.elemTyp = fn
		return nil
	}
}

// WithAction selects the item's action by name: one of the built-ins
// (store, store_const, store_true, store_false, append, extend, count) or a
// name registered with Parser.RegisterAction. The default is "store".
func WithAction(name string) ItemOption {
	return func(s *ItemSpec) error {
		s.actionName = name
		s.action = nil
		return nil
	}
}

// WithCustomAction supplies an Action implementation directly instead of a
// registered name.
func WithCustomAction(act Action) ItemOption {
	return func(s *ItemSpec) error {
		if act == nil {
			return fmt.Errorf("custom action cannot be nil")
		}
		s.actionName = ""
		s.action = act
		return nil
	}
}

// WithConst sets the constant stored by the store_const action whenever any
// source mentions the item.
func WithConst(v any) ItemOption {
	return func(s *ItemSpec) error {
		s.constVal = v
		s.hasConst = true
		return nil
	}
}

// WithChoices restricts the item's converted values to the given set.
// Contributions outside the set fail the parse with a ChoiceError.
func WithChoices(vals ...any) ItemOption {
	return func(s *ItemSpec) error {
		if len(vals) == 0 {
			return fmt.Errorf("choices cannot be empty")
		}
		s.choices = append([]any(nil), vals...)
		return nil
	}
}

// FromSources limits which sources may contribute to the item, by source
// name. Mutually exclusive with NotFromSources.
func FromSources(names ...string) ItemOption {
	return func(s *ItemSpec) error {
		s.include = append([]string(nil), names...)
		return nil
	}
}

// NotFromSources excludes the named sources from contributing to the item.
// Mutually exclusive with FromSources.
func NotFromSources(names ...string) ItemOption {
	return func(s *ItemSpec) error {
		s.exclude = append([]string(nil), names...)
		return nil
	}
}

// isValidItemName checks that a name is usable as a namespace attribute:
// a letter or underscore followed by letters, digits, and underscores.
func isValidItemName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isLetter && r != '_' {
				return false
			}
			continue
		}
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
