package mergeconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileSource contributes values from a JSON, TOML, or YAML file whose
// top-level keys are item names. The format is taken from the file
// extension, falling back to content detection. A missing file fails the
// parse with a SourceError wrapping ErrFileNotFound; callers that treat the
// file as optional can test for it with errors.Is.
type FileSource struct {
	path       string
	format     string
	noneValues []any
}

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// FileFormat forces the file format ("json", "toml", or "yaml") instead of
// detecting it.
func FileFormat(format string) FileOption {
	return func(s *FileSource) { s.format = strings.ToLower(format) }
}

// FileNoneValues replaces the decoded values treated as
// mention-without-value for presence-only items. The default treats nil
// (JSON/YAML null) as a mention.
func FileNoneValues(vals ...any) FileOption {
	return func(s *FileSource) { s.noneValues = append([]any(nil), vals...) }
}

// NewFileSource creates a source reading the given file on each Parse call.
func NewFileSource(path string, opts ...FileOption) *FileSource {
	s := &FileSource{path: path, noneValues: defaultNoneValues()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "file".
func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Load(specs []*ItemSpec) (map[string][]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", s.path, err)
	}

	format := s.format
	if format == "" || format == "auto" {
		format = detectFileFormat(s.path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
		if format == "" {
			return nil, fmt.Errorf("unable to determine config format for file '%s'", s.path)
		}
	}

	doc, err := decodeConfigData(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s config file '%s': %w", format, s.path, err)
	}
	return contributionsFromDoc(specs, doc, s.noneValues)
}

// ReaderSource is FileSource for an in-memory stream: it decodes the reader's
// contents once, at construction, in the given format ("json", "toml", or
// "yaml"), and serves the same document on every Parse call.
type ReaderSource struct {
	doc        map[string]any
	err        error
	noneValues []any
}

// NewReaderSource drains the reader and decodes its contents. A read or
// decode failure is deferred to the first Parse call so that source
// construction stays error-free, matching AddSource.
func NewReaderSource(r io.Reader, format string) *ReaderSource {
	s := &ReaderSource{noneValues: defaultNoneValues()}
	data, err := io.ReadAll(r)
	if err != nil {
		s.err = fmt.Errorf("failed to read config stream: %w", err)
		return s
	}
	s.doc, s.err = decodeConfigData(data, strings.ToLower(format))
	return s
}

// Name returns "reader".
func (s *ReaderSource) Name() string { return "reader" }

func (s *ReaderSource) Load(specs []*ItemSpec) (map[string][]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return contributionsFromDoc(specs, s.doc, s.noneValues)
}

func contributionsFromDoc(specs []*ItemSpec, doc map[string]any, noneValues []any) (map[string][]any, error) {
	out := make(map[string][]any)
	for _, spec := range specs {
		value, ok := doc[spec.Name()]
		if !ok {
			continue
		}
		contribs, err := contributionsFromValue(spec, value, noneValues)
		if err != nil {
			return nil, err
		}
		out[spec.Name()] = contribs
	}
	return out, nil
}

func decodeConfigData(data []byte, format string) (map[string]any, error) {
	doc := make(map[string]any)
	switch format {
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&doc); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return doc, nil
}

// detectFileFormat determines format from file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing. JSON is
// strictest so it goes first; YAML is a JSON superset so it goes second.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}
