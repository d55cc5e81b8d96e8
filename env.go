package mergeconf

import (
	"fmt"
	"os"
	"strings"
)

// EnvTransformFunc converts an item name to an environment variable name.
type EnvTransformFunc func(name string) string

// EnvLookupFunc describes how environment variables are looked up. Override
// with EnvLookup when running against a snapshot or in tests.
type EnvLookupFunc func(key string) (string, bool)

// EnvSource contributes values from environment variables. Each item maps to
// one variable via the transform function; the default transform upper-cases
// the item name and prepends the prefix, so "db_host" with prefix "MYAPP_"
// reads MYAPP_DB_HOST.
type EnvSource struct {
	prefix     string
	transform  EnvTransformFunc
	lookup     EnvLookupFunc
	noneValues []string
}

// EnvOption configures an EnvSource.
type EnvOption func(*EnvSource)

// EnvPrefix is prepended to every generated environment variable name.
func EnvPrefix(prefix string) EnvOption {
	return func(s *EnvSource) { s.prefix = prefix }
}

// EnvTransform replaces the default item-name-to-variable mapping. The
// prefix is not applied to transformed names; include it in the function if
// needed.
func EnvTransform(fn EnvTransformFunc) EnvOption {
	return func(s *EnvSource) { s.transform = fn }
}

// EnvLookup overrides the environment lookup strategy. The default is
// os.LookupEnv.
func EnvLookup(fn EnvLookupFunc) EnvOption {
	return func(s *EnvSource) { s.lookup = fn }
}

// EnvNoneValues replaces the variable values read as mention-without-value
// for presence-only items. The default is the empty string, so FLAG= counts
// as setting a flag item.
func EnvNoneValues(vals ...string) EnvOption {
	return func(s *EnvSource) { s.noneValues = append([]string(nil), vals...) }
}

// NewEnvSource creates a source reading the process environment.
func NewEnvSource(opts ...EnvOption) *EnvSource {
	s := &EnvSource{
		lookup:     os.LookupEnv,
		noneValues: []string{""},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transform == nil {
		prefix := s.prefix
		s.transform = func(name string) string {
			return prefix + strings.ToUpper(name)
		}
	}
	return s
}

// Name returns "env".
func (s *EnvSource) Name() string { return "env" }

// Load reports one contribution per item whose variable is set. Values stay
// raw strings; the item's converter handles coercion.
func (s *EnvSource) Load(specs []*ItemSpec) (map[string][]any, error) {
	out := make(map[string][]any)
	for _, spec := range specs {
		value, exists := s.lookup(s.transform(spec.Name()))
		if !exists {
			continue
		}
		if !spec.TakesValue() {
			none := false
			for _, nv := range s.noneValues {
				if value == nv {
					none = true
					break
				}
			}
			if !none {
				return nil, fmt.Errorf("invalid value %q for presence-only config item %q", value, spec.Name())
			}
			out[spec.Name()] = []any{Presence}
			continue
		}
		out[spec.Name()] = []any{value}
	}
	return out, nil
}

// Discover returns, for each registered item whose environment variable is
// currently set, the variable name it would be read from. Useful for
// debugging which parts of the environment a Parse call will pick up.
func (s *EnvSource) Discover(specs []*ItemSpec) map[string]string {
	found := make(map[string]string)
	for _, spec := range specs {
		envName := s.transform(spec.Name())
		if _, exists := s.lookup(envName); exists {
			found[spec.Name()] = envName
		}
	}
	return found
}
