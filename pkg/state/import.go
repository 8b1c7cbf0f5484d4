package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidImport marks a document that failed the import shape check.
var ErrInvalidImport = errors.New("state: invalid import document")

// Format is an import/export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml; empty means json.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("state: unknown format %q", raw)
	}
}

// ParseImport validates and decodes an externally supplied document. The
// minimum shape is an object with an "accounts" object; anything else is
// rejected with ErrInvalidImport. Accepted documents come back normalized.
func ParseImport(data []byte, format Format, now time.Time) (*Root, error) {
	if format == FormatYAML {
		return parseYAML(data, now)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidImport)
	}
	if !gjson.GetBytes(data, "accounts").IsObject() {
		return nil, fmt.Errorf("%w: missing accounts object", ErrInvalidImport)
	}
	r, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return Normalize(r, now), nil
}

// Export renders r in the requested format.
func Export(r *Root, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(r)
	default:
		b, err := MarshalIndent(r)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
}

// parseYAML decodes straight into Root; day keys look like timestamps to a
// generic YAML decoder.
func parseYAML(data []byte, now time.Time) (*Root, error) {
	var shape struct {
		Accounts yaml.Node `yaml:"accounts"`
	}
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if shape.Accounts.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: missing accounts mapping", ErrInvalidImport)
	}
	r := &Root{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return Normalize(r, now), nil
}
