package descriptor

import "fmt"

// Schema identifies the tool and version a manifest was written for.
type Schema struct {
	Name    string
	Version string
}

// Namespace holds the namespace section of a manifest. Map keys are dotted
// class paths in declaration order; values are source locations.
type Namespace struct {
	Base         string
	Map          *Object
	Dependencies *Object
	Aliases      *Object
}

// Clone returns a deep copy of the namespace.
func (n Namespace) Clone() Namespace {
	return Namespace{
		Base:         n.Base,
		Map:          CloneObject(n.Map),
		Dependencies: CloneObject(n.Dependencies),
		Aliases:      CloneObject(n.Aliases),
	}
}

// Classes returns the class paths of the namespace map in order.
func (n Namespace) Classes() []string {
	if n.Map == nil {
		return nil
	}
	classes := make([]string, 0, n.Map.Len())
	for pair := n.Map.Oldest(); pair != nil; pair = pair.Next() {
		classes = append(classes, pair.Key)
	}
	return classes
}

// Descriptor is the typed view of a verified manifest.
type Descriptor struct {
	Schema    Schema
	Namespace Namespace
	SrcDir    *string
	BuildDir  *string
	// Start names the entry class handed to the compiler.
	Start string
}

// Decode verifies doc with the process toolchain version and builds a
// Descriptor from it.
func Decode(doc Document) (*Descriptor, error) {
	return NewValidator().Decode(doc)
}

// Decode verifies doc and builds a Descriptor from it. A verification that
// reports false without an error yields a nil Descriptor and nil error.
func (v *Validator) Decode(doc Document) (*Descriptor, error) {
	ok, err := v.Verify(doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return fromVerified(doc), nil
}

func fromVerified(doc Document) *Descriptor {
	d := &Descriptor{}

	name, _ := doc.Lookup("schema", "name")
	ver, _ := doc.Lookup("schema", "version")
	d.Schema = Schema{Name: name.(string), Version: ver.(string)}

	base, _ := doc.Lookup("namespace", "base")
	d.Namespace.Base = fmt.Sprint(base)

	// Verify only requires map to be present. Anything that is not an
	// object has no dotted class keys and yields an empty map.
	rawMap, _ := doc.Lookup("namespace", "map")
	if m, ok := rawMap.(*Object); ok && m != nil {
		d.Namespace.Map = m
	} else {
		d.Namespace.Map = NewObject()
	}
	if deps, ok := doc.Lookup("namespace", "dependencies"); ok {
		d.Namespace.Dependencies = deps.(*Object)
	}
	if aliases, ok := doc.Lookup("namespace", "aliases"); ok {
		d.Namespace.Aliases = aliases.(*Object)
	}

	d.SrcDir = optionalString(doc, "srcDir")
	d.BuildDir = optionalString(doc, "buildDir")
	if start, ok := doc.Lookup("start"); ok {
		if s, ok := start.(string); ok {
			d.Start = s
		}
	}
	return d
}

func optionalString(doc Document, key string) *string {
	val, ok := doc.Lookup(key)
	if !ok {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return nil
	}
	return &s
}

// RegistryNamespace exposes the namespace without copying it.
func (d *Descriptor) RegistryNamespace() Namespace {
	return d.Namespace
}

// RegistrySrcDir reports the source directory when one is declared and
// non-empty.
func (d *Descriptor) RegistrySrcDir() (string, bool) {
	if d.SrcDir == nil || *d.SrcDir == "" {
		return "", false
	}
	return *d.SrcDir, true
}
