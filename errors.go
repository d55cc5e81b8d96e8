package mergeconf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFileNotFound indicates that a FileSource's file does not exist. It is
// wrapped in the *SourceError returned by Parse, so test with errors.Is.
var ErrFileNotFound = errors.New("config file not found")

// SpecError indicates an invalid item or source registration: a duplicate
// item name, conflicting required/default settings, an unknown action name,
// and similar. It is returned synchronously by AddItem, AddSource and
// RegisterAction, never by Parse.
type SpecError struct {
	Name   string // item name, empty for parser-level registration errors
	Reason string
}

func (e *SpecError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("config spec: %s", e.Reason)
	}
	return fmt.Sprintf("config spec: item %q: %s", e.Name, e.Reason)
}

// SourceError indicates that a source failed to produce its contributions,
// for example because of a malformed file or unparsable command line. It
// aborts the Parse call without running the remaining sources.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("config source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ConversionError indicates that a contributed raw value could not be
// coerced with the item's type converter. It aborts the Parse call.
type ConversionError struct {
	Item string
	Raw  any
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert value '%v' for config item %q: %v", e.Raw, e.Item, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ChoiceError indicates that a contributed value, after conversion, is not
// one of the item's permitted choices.
type ChoiceError struct {
	Item    string
	Value   any
	Choices []any
}

func (e *ChoiceError) Error() string {
	choices := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		choices[i] = fmt.Sprintf("%v", c)
	}
	return fmt.Sprintf("invalid choice '%v' for config item %q; valid choices are (%s)",
		e.Value, e.Item, strings.Join(choices, ", "))
}

// MissingRequiredError indicates that one or more required items received no
// contribution from any source. It is raised only after all sources have run,
// so source and conversion failures take priority, and it names every missing
// item rather than just the first.
type MissingRequiredError struct {
	Items []string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("no value found for required config items: %s", strings.Join(e.Items, ", "))
}
