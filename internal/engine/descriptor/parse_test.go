package descriptor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pjerrors "projectjs/internal/core/errors"
)

func TestParseEmptyInput(t *testing.T) {
	for _, input := range [][]byte{nil, {}} {
		_, err := Parse(input)
		require.Error(t, err)
		assert.True(t, pjerrors.IsCode(err, pjerrors.CodeEmptyInput), "got %v", err)
	}
}

func TestParseMatchesLogicalContent(t *testing.T) {
	inputs := []string{
		`{"schema":{"name":"project.js","version":"1.0.0"},"list":[1,2.5,"x",true,null],"nested":{"a":{}}}`,
		`[1, 2, 3]`,
		`"just a string"`,
		`42`,
		`null`,
		`{"dup": 1, "dup": 2}`,
	}

	for _, input := range inputs {
		doc, err := Parse([]byte(input))
		require.NoError(t, err, input)

		var want any
		require.NoError(t, json.Unmarshal([]byte(input), &want))
		if diff := cmp.Diff(want, doc.Plain()); diff != "" {
			t.Errorf("Parse(%s) mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestParseKeepsKeyOrder(t *testing.T) {
	doc, err := Parse([]byte(`{"namespace":{"map":{"z.Last":"a","a.First":"b","m.Middle":"c"}}}`))
	require.NoError(t, err)

	m, ok := doc.Lookup("namespace", "map")
	require.True(t, ok)
	obj := m.(*Object)

	var keys []string
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"z.Last", "a.First", "m.Middle"}, keys)
}

func TestParseSyntaxError(t *testing.T) {
	inputs := []string{
		`{"schema":`,
		`{"a" 1}`,
		`   `,
		`{} {}`,
		`{"a": 1,}`,
	}
	for _, input := range inputs {
		_, err := Parse([]byte(input))
		require.Error(t, err, input)
		assert.True(t, pjerrors.IsCode(err, pjerrors.CodeSyntax), "input %q: got %v", input, err)
	}

	// The decoder's error is kept in the chain.
	_, err := Parse([]byte(`{"a" 1}`))
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "expected *json.SyntaxError in chain, got %v", err)
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"project.json", FormatJSON},
		{"/a/b/project.TOML", FormatTOML},
		{"project.yaml", FormatYAML},
		{"project.yml", FormatYAML},
		{"project", FormatJSON},
	}
	for _, tc := range tests {
		if got := FormatForPath(tc.path); got != tc.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestParseFormatYAML(t *testing.T) {
	input := `
schema:
  name: project.js
  version: 1.0.0
namespace:
  base: ns
  map:
    ns.b.Second: second.js
    ns.a.First: first.js
srcDir: null
count: 3
`
	doc, err := ParseFormat([]byte(input), FormatYAML)
	require.NoError(t, err)

	want := map[string]any{
		"schema":    map[string]any{"name": "project.js", "version": "1.0.0"},
		"namespace": map[string]any{"base": "ns", "map": map[string]any{"ns.b.Second": "second.js", "ns.a.First": "first.js"}},
		"srcDir":    nil,
		"count":     float64(3),
	}
	if diff := cmp.Diff(want, doc.Plain()); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}

	m, _ := doc.Lookup("namespace", "map")
	assert.Equal(t, "ns.b.Second", m.(*Object).Oldest().Key)
}

func TestParseFormatTOML(t *testing.T) {
	input := `
srcDir = "src"

[schema]
name = "project.js"
version = "1.0.0"

[namespace]
base = "ns"

[namespace.map]
"ns.b.Second" = "second.js"
"ns.a.First" = "first.js"
`
	doc, err := ParseFormat([]byte(input), FormatTOML)
	require.NoError(t, err)

	m, ok := doc.Lookup("namespace", "map")
	require.True(t, ok)
	obj := m.(*Object)
	require.Equal(t, 2, obj.Len())
	assert.Equal(t, "ns.b.Second", obj.Oldest().Key)
	assert.Equal(t, "ns.a.First", obj.Newest().Key)

	src, _ := doc.Lookup("srcDir")
	assert.Equal(t, "src", src)
}

func TestParseFormatSyntaxErrors(t *testing.T) {
	_, err := ParseFormat([]byte("a = [1,"), FormatTOML)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeSyntax), "toml: got %v", err)

	_, err = ParseFormat([]byte("a: [1, 2"), FormatYAML)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeSyntax), "yaml: got %v", err)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{float64(1), KindNumber},
		{"s", KindString},
		{[]any{}, KindArray},
		{NewObject(), KindMap},
		{struct{}{}, KindOther},
	}
	for _, tc := range tests {
		if got := KindOf(tc.value); got != tc.want {
			t.Errorf("KindOf(%#v) = %s, want %s", tc.value, got, tc.want)
		}
	}
}
