package mergeconf

import (
	"fmt"
	"strings"
)

// FlagSource contributes values from command-line arguments. An item named
// db_host is read from --db-host; value items accept --db-host=x and
// --db-host x, presence-only items are bare flags and may repeat. Unknown
// flags and stray positional arguments fail the parse.
type FlagSource struct {
	args []string
}

// NewFlagSource creates a source over the given argument list, normally
// os.Args[1:]. The slice is not copied.
func NewFlagSource(args []string) *FlagSource {
	return &FlagSource{args: args}
}

// Name returns "cli".
func (s *FlagSource) Name() string { return "cli" }

// flagName maps an item name to its command-line flag, without the leading
// dashes.
func flagName(itemName string) string {
	return strings.ReplaceAll(itemName, "_", "-")
}

// Load walks the argument list once. Repeated flags produce one contribution
// each, in argv order, so append and count items see every mention.
func (s *FlagSource) Load(specs []*ItemSpec) (map[string][]any, error) {
	byFlag := make(map[string]*ItemSpec, len(specs))
	for _, spec := range specs {
		byFlag[flagName(spec.Name())] = spec
	}

	out := make(map[string][]any)
	for i := 0; i < len(s.args); i++ {
		arg := s.args[i]
		if arg == "--" {
			continue
		}
		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}

		body := arg[2:]
		name, inline, hasInline := strings.Cut(body, "=")
		spec, ok := byFlag[name]
		if !ok {
			return nil, fmt.Errorf("unknown flag --%s", name)
		}

		if !spec.TakesValue() {
			if hasInline {
				return nil, fmt.Errorf("flag --%s takes no value", name)
			}
			out[spec.Name()] = append(out[spec.Name()], Presence)
			continue
		}

		var value string
		switch {
		case hasInline:
			value = inline
		case i+1 < len(s.args) && !strings.HasPrefix(s.args[i+1], "--"):
			i++
			value = s.args[i]
		default:
			return nil, fmt.Errorf("flag --%s requires a value", name)
		}
		out[spec.Name()] = append(out[spec.Name()], value)
	}
	return out, nil
}
