package mergeconf

import (
	"fmt"
)

// ValidatorFunc validates a parsed result as a whole, after all per-item
// conversion and choice checks. It receives the merged Namespace and should
// return an error if cross-item constraints fail.
type ValidatorFunc func(ns *Namespace) error

// Builder provides a fluent interface for assembling a parser. Registration
// errors are recorded instead of returned, so declarations chain; the first
// recorded error is reported by Build.
type Builder struct {
	parser     *Parser
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a builder around a fresh Parser.
func NewBuilder(opts ...ParserOption) *Builder {
	return &Builder{parser: New(opts...)}
}

// AddItem registers a configuration item.
func (b *Builder) AddItem(name string, opts ...ItemOption) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := b.parser.AddItem(name, opts...); err != nil {
		b.err = err
	}
	return b
}

// AddSource appends a source.
func (b *Builder) AddSource(src Source, opts ...SourceOption) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.parser.AddSource(src, opts...); err != nil {
		b.err = err
	}
	return b
}

// RegisterAction makes a custom action available to AddItem by name.
func (b *Builder) RegisterAction(name string, act Action) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.parser.RegisterAction(name, act); err != nil {
		b.err = err
	}
	return b
}

// WithValidator adds a validation function that runs after a successful
// parse. Multiple validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build parses the assembled configuration and runs the validators.
func (b *Builder) Build() (*Namespace, error) {
	if b.err != nil {
		return nil, b.err
	}
	ns, err := b.parser.Parse()
	if err != nil {
		return nil, err
	}
	for _, validator := range b.validators {
		if err := validator(ns); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return ns, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Namespace {
	ns, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return ns
}

// BuildAndScan builds and decodes the result into the provided struct or map
// pointer.
func (b *Builder) BuildAndScan(target any) error {
	ns, err := b.Build()
	if err != nil {
		return err
	}
	return ns.Scan(target)
}

// Parser exposes the underlying parser, for repeated Parse calls after
// building once.
func (b *Builder) Parser() *Parser { return b.parser }
