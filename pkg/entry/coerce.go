package entry

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Coerce reads a stored amount the way older documents wrote it: numbers,
// numeric strings and booleans count. Anything else, including values that
// overflow, reads as zero.
func Coerce(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return coerceString(v.Raw)
	case gjson.String:
		return coerceString(v.Str)
	case gjson.True:
		return 1
	default:
		return 0
	}
}

// CoerceNode is Coerce for YAML scalars.
func CoerceNode(n *yaml.Node) float64 {
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0
	}
	if n.Tag == "!!bool" {
		if b, err := strconv.ParseBool(n.Value); err == nil && b {
			return 1
		}
		return 0
	}
	return coerceString(n.Value)
}

func coerceString(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !Finite(f) {
		return 0
	}
	return f
}

// UnmarshalJSON accepts an entry whose amount is a number or a numeric
// string. A malformed entry decodes as a zero entry instead of failing the
// whole document.
func (e *Entry) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	*e = Entry{ML: Coerce(v.Get("ml")), TS: v.Get("ts").String()}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	*e = Entry{}
	if value.Kind != yaml.MappingNode {
		return nil
	}
	var raw struct {
		ML yaml.Node `yaml:"ml"`
		TS yaml.Node `yaml:"ts"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	e.ML = CoerceNode(&raw.ML)
	if raw.TS.Kind == yaml.ScalarNode {
		e.TS = raw.TS.Value
	}
	return nil
}
