package mergeconf

import (
	"fmt"
	"sort"
	"sync"
)

// Parser owns the item registry and the ordered source list, and runs the
// merge pipeline. Registration (AddItem, AddSource, RegisterAction) and
// parsing are not designed to interleave: Parse snapshots the registry under
// the lock and works on the snapshot, so registrations made during a Parse
// call affect only later calls.
type Parser struct {
	mutex       sync.RWMutex
	specs       []*ItemSpec
	byName      map[string]*ItemSpec
	sources     []registeredSource
	actions     map[string]Action
	itemDefault any
	hasDefault  bool
}

type registeredSource struct {
	src      Source
	name     string
	priority int
}

// ParserOption configures a Parser at construction time.
type ParserOption func(*Parser)

// WithItemDefault sets a parser-wide default used by items that do not set
// their own. Pass Suppress to omit not-found items from the Namespace
// entirely.
func WithItemDefault(v any) ParserOption {
	return func(p *Parser) {
		p.itemDefault = v
		p.hasDefault = true
	}
}

// New creates an empty Parser.
func New(opts ...ParserOption) *Parser {
	p := &Parser{
		byName:  make(map[string]*ItemSpec),
		actions: make(map[string]Action),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterAction makes a custom Action available to WithAction under the
// given name. Built-in names cannot be overridden.
func (p *Parser) RegisterAction(name string, act Action) error {
	if name == "" || act == nil {
		return &SpecError{Reason: "action registration requires a name and an implementation"}
	}
	if _, exists := builtinActions[name]; exists {
		return &SpecError{Reason: fmt.Sprintf("cannot override built-in action %q", name)}
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, exists := p.actions[name]; exists {
		return &SpecError{Reason: fmt.Sprintf("action %q already registered", name)}
	}
	p.actions[name] = act
	return nil
}

// AddItem registers a configuration item and returns its immutable spec.
// It fails with a *SpecError on a duplicate name, an invalid name, an
// unknown action, or conflicting options; a failed registration leaves the
// registry untouched.
func (p *Parser) AddItem(name string, opts ...ItemOption) (*ItemSpec, error) {
	if !isValidItemName(name) {
		return nil, &SpecError{Name: name, Reason: "name must be a letter or underscore followed by letters, digits, or underscores"}
	}

	spec := &ItemSpec{
		name:       name,
		actionName: "store",
		typ:        Identity,
	}
	for _, opt := range opts {
		if err := opt(spec); err != nil {
			return nil, &SpecError{Name: name, Reason: err.Error()}
		}
	}

	if spec.required && spec.hasDefault {
		return nil, &SpecError{Name: name, Reason: "cannot be both required and have a default"}
	}
	if spec.include != nil && spec.exclude != nil {
		return nil, &SpecError{Name: name, Reason: "cannot set both source include and exclude filters"}
	}

	if spec.action == nil {
		act, err := p.resolveAction(spec.actionName)
		if err != nil {
			return nil, &SpecError{Name: name, Reason: err.Error()}
		}
		spec.action = act
	}

	switch spec.actionName {
	case "store_const":
		if !spec.hasConst {
			return nil, &SpecError{Name: name, Reason: "the store_const action requires a const value"}
		}
	case "store_true", "store_false":
		if spec.hasConst {
			return nil, &SpecError{Name: name, Reason: fmt.Sprintf("const cannot be supplied to the %s action", spec.actionName)}
		}
		spec.constVal = spec.actionName == "store_true"
		spec.hasConst = true
		if !spec.required && !spec.hasDefault {
			spec.def = !spec.constVal.(bool)
			spec.hasDefault = true
		}
	default:
		if spec.hasConst {
			return nil, &SpecError{Name: name, Reason: fmt.Sprintf("const cannot be supplied to the %s action", spec.actionName)}
		}
	}
	if spec.choices != nil && !spec.TakesValue() {
		return nil, &SpecError{Name: name, Reason: fmt.Sprintf("choices are not valid for the %s action", spec.actionName)}
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, exists := p.byName[name]; exists {
		return nil, &SpecError{Name: name, Reason: "already registered"}
	}
	p.byName[name] = spec
	p.specs = append(p.specs, spec)
	return spec, nil
}

func (p *Parser) resolveAction(name string) (Action, error) {
	p.mutex.RLock()
	act, ok := p.actions[name]
	p.mutex.RUnlock()
	if ok {
		return act, nil
	}
	if act, ok := builtinActions[name]; ok {
		return act, nil
	}
	return nil, fmt.Errorf("unknown action %q", name)
}

// SourceOption configures a source registration.
type SourceOption func(*registeredSource)

// SourcePriority attaches an explicit priority to a source. Contributions
// are ordered by ascending priority, so higher-priority sources win for
// single-value actions. The default priority is 0 for every source, which
// makes registration order the tie-break (and, with no explicit priorities,
// the only ordering rule: later-registered sources win).
func SourcePriority(n int) SourceOption {
	return func(rs *registeredSource) { rs.priority = n }
}

// SourceAs overrides the name the source is registered under, for error
// reporting and for per-item source filters. Useful when registering two
// sources of the same kind.
func SourceAs(name string) SourceOption {
	return func(rs *registeredSource) { rs.name = name }
}

// AddSource appends a source to the parser's ordered source list.
func (p *Parser) AddSource(src Source, opts ...SourceOption) error {
	if src == nil {
		return &SpecError{Reason: "source cannot be nil"}
	}
	rs := registeredSource{src: src, name: src.Name()}
	for _, opt := range opts {
		opt(&rs)
	}
	if rs.name == "" {
		return &SpecError{Reason: "source must have a name"}
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sources = append(p.sources, rs)
	return nil
}

// Parse runs every registered source in priority order, merges the
// contributions per item with each item's action, applies the
// required/default policy, and returns the immutable result. It is atomic:
// on any failure no Namespace is produced. Parse may be called repeatedly;
// calls are independent and do not mutate the parser.
func (p *Parser) Parse() (*Namespace, error) {
	return p.parse(true)
}

// ParsePartial is Parse without the required-items check: an unmet required
// item appears in the result with a nil value. For callers that want to
// inspect whatever values are available before all sources can satisfy the
// full registry.
func (p *Parser) ParsePartial() (*Namespace, error) {
	return p.parse(false)
}

func (p *Parser) parse(checkRequired bool) (*Namespace, error) {
	p.mutex.RLock()
	specs := make([]*ItemSpec, len(p.specs))
	copy(specs, p.specs)
	sources := make([]registeredSource, len(p.sources))
	copy(sources, p.sources)
	globalDefault, hasGlobalDefault := p.itemDefault, p.hasDefault
	p.mutex.RUnlock()

	// Stable sort keeps registration order within equal priorities.
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].priority < sources[j].priority
	})

	contributions := make(map[string][]any)
	for _, rs := range sources {
		view := make([]*ItemSpec, len(specs))
		copy(view, specs)
		found, err := rs.src.Load(view)
		if err != nil {
			return nil, &SourceError{Source: rs.name, Err: err}
		}
		for _, spec := range specs {
			vals, ok := found[spec.name]
			if !ok || len(vals) == 0 {
				continue
			}
			if !spec.allowsSource(rs.name) {
				continue
			}
			contributions[spec.name] = append(contributions[spec.name], vals...)
		}
	}

	values := make(map[string]any, len(specs))
	order := make([]string, 0, len(specs))
	var missing []string
	for _, spec := range specs {
		value, found, err := spec.action.Combine(spec, contributions[spec.name])
		if err != nil {
			return nil, err
		}
		if !found {
			if spec.required && checkRequired {
				missing = append(missing, spec.name)
				continue
			}
			def, ok := spec.Default()
			if !ok && hasGlobalDefault {
				def = globalDefault
			}
			if _, suppressed := def.(suppressMarker); suppressed {
				continue
			}
			value = def
		}
		values[spec.name] = value
		order = append(order, spec.name)
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredError{Items: missing}
	}

	return newNamespace(values, order), nil
}
