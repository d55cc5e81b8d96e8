package mergeconf

import "reflect"

// Action is the combination policy that reduces an item's ordered sequence
// of raw contributions into one final value. Contributions arrive in source
// priority order, lowest priority first, with each source's internal order
// preserved; for single-value policies the last contribution therefore comes
// from the highest-priority source.
//
// Combine reports found=false when the contributions do not amount to a
// value (typically because there are none), letting the parser apply the
// item's required/default policy. Implementations that materialize raw
// values should coerce each contribution with spec's converter; the built-in
// value-bearing actions convert every contribution, not just the ones that
// end up in the result, so a bad value anywhere fails the parse.
type Action interface {
	Combine(spec *ItemSpec, contributions []any) (value any, found bool, err error)
}

// builtinActions maps action names accepted by WithAction to their
// implementations. store_true and store_false share the store_const
// implementation; AddItem fills in their implied const and default.
var builtinActions = map[string]Action{
	"store":       storeAction{},
	"store_const": storeConstAction{},
	"store_true":  storeConstAction{},
	"store_false": storeConstAction{},
	"append":      appendAction{},
	"extend":      extendAction{},
	"count":       countAction{},
}

// storeAction keeps the last contribution: later sources override earlier
// ones. Every contribution is converted so that invalid values fail the
// parse even when overridden.
type storeAction struct{}

func (storeAction) Combine(spec *ItemSpec, contributions []any) (any, bool, error) {
	if len(contributions) == 0 {
		return nil, false, nil
	}
	var out any
	for _, raw := range contributions {
		v, err := spec.convert(raw)
		if err != nil {
			return nil, false, err
		}
		out = v
	}
	return out, true, nil
}

// storeConstAction yields the item's const whenever any source mentioned the
// item. Contributed values are irrelevant; only presence matters, and the
// last-wins rule degenerates to presence detection.
type storeConstAction struct{}

func (storeConstAction) Combine(spec *ItemSpec, contributions []any) (any, bool, error) {
	if len(contributions) == 0 {
		return nil, false, nil
	}
	return spec.constVal, true, nil
}

// appendAction accumulates one converted element per contribution, in source
// priority order.
type appendAction struct{}

func (appendAction) Combine(spec *ItemSpec, contributions []any) (any, bool, error) {
	if len(contributions) == 0 {
		return nil, false, nil
	}
	out := make([]any, 0, len(contributions))
	for _, raw := range contributions {
		v, err := spec.convert(raw)
		if err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	return out, true, nil
}

// extendAction is append with flattening: a contribution that is itself a
// sequence contributes each of its elements, converted with the item's
// element converter. []byte contributions stay atomic.
type extendAction struct{}

func (extendAction) Combine(spec *ItemSpec, contributions []any) (any, bool, error) {
	if len(contributions) == 0 {
		return nil, false, nil
	}
	out := make([]any, 0, len(contributions))
	for _, raw := range contributions {
		if _, atomic := raw.([]byte); !atomic {
			rv := reflect.ValueOf(raw)
			if raw != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
				for i := 0; i < rv.Len(); i++ {
					v, err := spec.convertElem(rv.Index(i).Interface())
					if err != nil {
						return nil, false, err
					}
					out = append(out, v)
				}
				continue
			}
		}
		v, err := spec.convertElem(raw)
		if err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	return out, true, nil
}

// countAction yields the number of times the item was mentioned across all
// sources. Contributed values are never converted or inspected.
type countAction struct{}

func (countAction) Combine(spec *ItemSpec, contributions []any) (any, bool, error) {
	if len(contributions) == 0 {
		return nil, false, nil
	}
	return len(contributions), true, nil
}
