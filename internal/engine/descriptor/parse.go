package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	pjerrors "projectjs/internal/core/errors"
)

// Format identifies the syntax of a manifest.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from the file extension. Anything that is not
// TOML or YAML is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes JSON manifest text into a Document. It does not look at the
// shape of the result.
func Parse(data []byte) (Document, error) {
	return ParseFormat(data, FormatJSON)
}

// ParseFormat decodes manifest text of the given format. Empty input fails
// with EMPTY_INPUT; malformed input fails with SYNTAX_ERROR wrapping the
// decoder's own error.
func ParseFormat(data []byte, format Format) (Document, error) {
	if len(data) == 0 {
		return Document{}, pjerrors.New(pjerrors.CodeEmptyInput, "project descriptor is empty")
	}

	var (
		root any
		err  error
	)
	switch format {
	case FormatJSON, "":
		format = FormatJSON
		root, err = decodeJSON(data)
	case FormatTOML:
		root, err = decodeTOML(data)
	case FormatYAML:
		root, err = decodeYAML(data)
	default:
		return Document{}, pjerrors.Newf(pjerrors.CodeInternal, "unsupported descriptor format %q", format)
	}
	if err != nil {
		return Document{}, (&pjerrors.DomainError{
			Code:    pjerrors.CodeSyntax,
			Message: fmt.Sprintf("malformed %s descriptor", format),
			Err:     err,
		}).WithContext(pjerrors.CtxFormat, string(format))
	}
	return Document{Root: root}, nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	// Only whitespace may follow the top-level value.
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := make([]any, 0)
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func decodeYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return yamlValue(&node)
}

func yamlValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := yamlValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(node.Content[i].Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			val, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return scalar(v), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", node.Line)
	}
}

func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	order := make(map[string]int)
	for i, key := range md.Keys() {
		if _, seen := order[key.String()]; !seen {
			order[key.String()] = i
		}
	}
	return tomlValue(raw, nil, order), nil
}

// tomlValue rebuilds TOML tables as Objects ordered by first appearance in
// the source. Keys the metadata does not list keep a stable name order.
func tomlValue(v any, path toml.Key, order map[string]int) any {
	switch t := v.(type) {
	case map[string]any:
		rank := func(k string) int {
			if i, ok := order[append(path[:len(path):len(path)], k).String()]; ok {
				return i
			}
			return len(order)
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.SliceStable(keys, func(i, j int) bool {
			ri, rj := rank(keys[i]), rank(keys[j])
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		})
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, tomlValue(t[k], append(path[:len(path):len(path)], k), order))
		}
		return obj
	case []map[string]any:
		arr := make([]any, len(t))
		for i, item := range t {
			arr[i] = tomlValue(item, path, order)
		}
		return arr
	case []any:
		arr := make([]any, len(t))
		for i, item := range t {
			arr[i] = tomlValue(item, path, order)
		}
		return arr
	default:
		return scalar(v)
	}
}

// scalar maps decoder-specific scalar types onto the Document's set.
func scalar(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}
