package mergeconf

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ConvertFunc coerces one raw contributed value into the item's final value
// type. Converters run on each contribution independently, before the item's
// action combines them; they never see defaults.
type ConvertFunc func(raw any) (any, error)

// Identity returns the raw value unchanged. It is the default converter.
func Identity(raw any) (any, error) { return raw, nil }

// String converts the raw value to a string. Attempts conversion from common
// types if the value isn't already a string.
func String(raw any) (any, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}

	switch v := raw.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to string", raw)
}

// Int64 converts the raw value to an int64. Attempts conversion from numeric
// types, parsable strings (base auto-detected, e.g. "0xFF"), and booleans.
func Int64(raw any) (any, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		maxInt64 := uint64(^uint64(0) >> 1)
		if u > maxInt64 {
			return nil, fmt.Errorf("unsigned integer %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	case reflect.String:
		s := rv.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		} else if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f), nil
		} else {
			return nil, fmt.Errorf("cannot convert string %q to int64: %w", s, err)
		}
	case reflect.Bool:
		if rv.Bool() {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to int64", raw)
}

// Int is Int64 narrowed to the platform int type.
func Int(raw any) (any, error) {
	v, err := Int64(raw)
	if err != nil {
		return nil, err
	}
	return int(v.(int64)), nil
}

// Float64 converts the raw value to a float64. Attempts conversion from
// numeric types, parsable strings, and booleans.
func Float64(raw any) (any, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		s := rv.String()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to float64: %w", s, err)
		}
		return f, nil
	case reflect.Bool:
		if rv.Bool() {
			return float64(1), nil
		}
		return float64(0), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to float64", raw)
}

// Bool converts the raw value to a bool. Numeric values are false when zero;
// strings go through strconv.ParseBool.
func Bool(raw any) (any, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		s := rv.String()
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to bool: %w", s, err)
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to bool", raw)
}

// Duration converts the raw value to a time.Duration. Strings use
// time.ParseDuration format; bare numbers are interpreted as seconds.
func Duration(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return nil, fmt.Errorf("invalid duration %q", v)
	}
	n, err := Float64(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot convert type %T to duration", raw)
	}
	return time.Duration(n.(float64) * float64(time.Second)), nil
}

// DecodeAs builds a converter that decodes the raw value into a fresh value
// of the same type as prototype, using weakly typed mapstructure decoding.
// This is the bridge for structured item types (structs, maps, slices):
//
//	parser.AddItem("endpoint", mergeconf.WithType(mergeconf.DecodeAs(Endpoint{})))
func DecodeAs(prototype any) ConvertFunc {
	target := reflect.TypeOf(prototype)
	return func(raw any) (any, error) {
		out := reflect.New(target)
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           out.Interface(),
			TagName:          "config",
			WeaklyTypedInput: true,
			DecodeHook:       decodeHooks(),
		})
		if err != nil {
			return nil, fmt.Errorf("decoder creation failed: %w", err)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, err
		}
		return out.Elem().Interface(), nil
	}
}

// decodeHooks is the composite decode hook shared by DecodeAs and
// Namespace.Scan.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}
