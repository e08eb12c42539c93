package descriptor

import (
	"fmt"

	pjerrors "projectjs/internal/core/errors"
	"projectjs/internal/engine/versions"
	"projectjs/internal/shared/version"
)

// SchemaNames lists the schema.name values a manifest may declare.
var SchemaNames = []string{"projectjs", version.Name}

// Validator checks Documents against the manifest schema.
type Validator struct {
	// ToolVersion reports the running toolchain version. It is queried once
	// per Verify call.
	ToolVersion func() string
}

// NewValidator returns a Validator bound to the process toolchain version.
func NewValidator() *Validator {
	return &Validator{ToolVersion: version.Own}
}

// Verify checks doc with the process toolchain version.
func Verify(doc Document) (bool, error) {
	return NewValidator().Verify(doc)
}

// Verify runs the schema checks in order and stops at the first violation.
// It returns true with a nil error only when every check passes; it never
// returns false without an error.
func (v *Validator) Verify(doc Document) (bool, error) {
	checks := []func(Document) error{
		checkSchemaFields,
		checkSchemaName,
		v.checkSchemaVersion,
		checkNamespace,
		checkMapField("dependencies"),
		checkMapField("aliases"),
		checkDirField("srcDir"),
		checkDirField("buildDir"),
	}
	for _, check := range checks {
		if err := check(doc); err != nil {
			return false, err
		}
	}
	return true, nil
}

func checkSchemaFields(doc Document) error {
	if _, ok := doc.Lookup("schema"); !ok {
		return pjerrors.Field(pjerrors.CodeMissingField, "schema", "project schema is not defined")
	}
	if name, ok := doc.Lookup("schema", "name"); !ok || isEmpty(name) {
		return pjerrors.Field(pjerrors.CodeInvalidField, "schema.name", "project schema name is not defined")
	}
	if ver, ok := doc.Lookup("schema", "version"); !ok || isEmpty(ver) {
		return pjerrors.Field(pjerrors.CodeInvalidField, "schema.version", "project schema version is not defined")
	}
	return nil
}

func checkSchemaName(doc Document) error {
	name, _ := doc.Lookup("schema", "name")
	if s, ok := name.(string); ok {
		for _, known := range SchemaNames {
			if s == known {
				return nil
			}
		}
	}
	return pjerrors.Field(pjerrors.CodeSchemaMismatch, "schema.name",
		fmt.Sprintf("schema mismatch: manifest was not written for %s (schema.name=%v)", version.Name, name))
}

func (v *Validator) checkSchemaVersion(doc Document) error {
	raw, _ := doc.Lookup("schema", "version")
	declared, ok := raw.(string)
	if !ok {
		return pjerrors.Field(pjerrors.CodeVersionMismatch, "schema.version",
			fmt.Sprintf("schema version %v is not a version string", raw))
	}

	toolVersion := version.Own
	if v != nil && v.ToolVersion != nil {
		toolVersion = v.ToolVersion
	}
	tool := toolVersion()
	if !versions.Compatible(tool, declared) {
		return pjerrors.Field(pjerrors.CodeVersionMismatch, "schema.version",
			fmt.Sprintf("schema version mismatch: manifest targets %s %s, running %s", version.Name, declared, tool))
	}
	return nil
}

func checkNamespace(doc Document) error {
	if _, ok := doc.Lookup("namespace"); !ok {
		return pjerrors.Field(pjerrors.CodeMissingField, "namespace", "namespace is not defined")
	}
	if base, ok := doc.Lookup("namespace", "base"); !ok || isEmpty(base) {
		return pjerrors.Field(pjerrors.CodeMissingField, "namespace.base", "namespace.base is not defined")
	}
	if _, ok := doc.Lookup("namespace", "map"); !ok {
		return pjerrors.Field(pjerrors.CodeMissingField, "namespace.map", "namespace.map is not defined")
	}
	return nil
}

func checkMapField(key string) func(Document) error {
	field := "namespace." + key
	return func(doc Document) error {
		val, ok := doc.Lookup("namespace", key)
		if ok && KindOf(val) != KindMap {
			return pjerrors.Field(pjerrors.CodeInvalidField, field,
				fmt.Sprintf("%s must be a map, got %s", field, KindOf(val)))
		}
		return nil
	}
}

func checkDirField(key string) func(Document) error {
	return func(doc Document) error {
		val, ok := doc.Lookup(key)
		if !ok {
			return nil
		}
		if kind := KindOf(val); kind != KindNull && kind != KindString {
			return pjerrors.Field(pjerrors.CodeInvalidField, key,
				fmt.Sprintf("if defined, %s must be a string, got %s", key, kind))
		}
		return nil
	}
}
