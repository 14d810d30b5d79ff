// Package generator renders a built xsd.Schema's component graph into JSON
// Schema (2020-12), on a best-effort basis, for consumers that want a
// documentish validation artifact instead of the XSD component graph
// itself. It is not a conformant XSD-to-JSON-Schema mapping — there is no
// such standard mapping — but follows the same shape-inference spirit as
// the teacher's own magicschema-style generators in the pack.
package generator

import (
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/schemarena/xsd11"
)

// JSONSchemaGenerator walks a built xsd.Schema and renders one top-level
// element declaration into a *jsonschema.Schema tree.
type JSONSchemaGenerator struct {
	schema *xsd.Schema
	seen   map[uint32]*jsonschema.Schema // complex-type handle index -> in-flight/finished schema, breaks recursive type cycles
}

func NewJSONSchemaGenerator(schema *xsd.Schema) *JSONSchemaGenerator {
	return &JSONSchemaGenerator{schema: schema, seen: map[uint32]*jsonschema.Schema{}}
}

// Generate renders the named top-level element declaration as a JSON Schema
// document describing its instance documents' JSON-ified shape (attributes
// and simple-typed children become properties; nested complex content
// becomes a nested object schema).
func (g *JSONSchemaGenerator) Generate(name xsd.QName) (*jsonschema.Schema, error) {
	h, ok := g.schema.Elements[name]
	if !ok {
		return nil, fmt.Errorf("generator: no element declaration for %s", name.String())
	}
	decl := g.schema.Arena.ElementDeclaration(h)
	root := g.typeSchema(decl.TypeDefinition)
	root.Title = name.Local
	return root, nil
}

func (g *JSONSchemaGenerator) typeSchema(ref xsd.TypeRef) *jsonschema.Schema {
	if ref.IsSimple() {
		return g.simpleTypeSchema(ref.Simple)
	}
	if ref.IsComplex() {
		return g.complexTypeSchema(ref.Complex)
	}
	return &jsonschema.Schema{}
}

func (g *JSONSchemaGenerator) complexTypeSchema(h xsd.Handle[xsd.ComplexTypeDefinition]) *jsonschema.Schema {
	if cached, ok := g.seen[h.Index()]; ok {
		return cached
	}
	out := &jsonschema.Schema{
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	g.seen[h.Index()] = out

	ct := g.schema.Arena.ComplexTypeDefinition(h)
	var required []string
	for _, uh := range ct.AttributeUses {
		use := g.schema.Arena.AttributeUse(uh)
		if use.Prohibited {
			continue
		}
		attr := g.schema.Arena.AttributeDeclaration(use.Declaration)
		out.Properties[attr.Name.Local] = g.simpleTypeSchema(attr.TypeDefinition)
		if use.Required {
			required = append(required, attr.Name.Local)
		}
	}
	if !ct.AttributeWildcard.IsZero() {
		out.AdditionalProperties = &jsonschema.Schema{}
	}

	if ct.Content.Variety == xsd.ContentElementOnly || ct.Content.Variety == xsd.ContentMixed {
		g.collectElementProperties(ct.Content.Particle, out, &required)
	}
	if len(required) > 0 {
		out.Required = required
	}
	return out
}

// collectElementProperties walks a content particle tree, adding one
// property per distinct element term it finds. Occurrence bounds beyond
// presence/absence (exact cardinality, ordering) are not modeled — this is
// an approximate JSON rendering, not a faithful content-model translation.
func (g *JSONSchemaGenerator) collectElementProperties(h xsd.Handle[xsd.Particle], out *jsonschema.Schema, required *[]string) {
	if h.IsZero() {
		return
	}
	p := g.schema.Arena.Particle(h)
	switch p.TermKind {
	case xsd.TermElement:
		decl := g.schema.Arena.ElementDeclaration(p.Element)
		child := g.typeSchema(decl.TypeDefinition)
		if !p.Max.Unbounded && p.Max.Value == 1 {
			out.Properties[decl.Name.Local] = child
		} else {
			out.Properties[decl.Name.Local] = &jsonschema.Schema{Type: "array", Items: child}
		}
		if p.Min >= 1 {
			*required = append(*required, decl.Name.Local)
		}
	case xsd.TermModelGroup:
		group := g.schema.Arena.ModelGroup(p.Group)
		for _, child := range group.Particles {
			g.collectElementProperties(child, out, required)
		}
	case xsd.TermWildcard:
		out.AdditionalProperties = &jsonschema.Schema{}
	}
}

// simpleTypeSchema maps a primitive/derived atomic type's lexical space to
// the closest JSON Schema "type" + format, falling back to "string" for
// anything without an obvious JSON primitive analogue (durations, QNames).
// A list variety becomes an array of its item type's schema, a union an
// anyOf of its member types' schemas.
func (g *JSONSchemaGenerator) simpleTypeSchema(h xsd.Handle[xsd.SimpleTypeDefinition]) *jsonschema.Schema {
	if h.IsZero() {
		return &jsonschema.Schema{}
	}
	st := g.schema.Arena.SimpleTypeDefinition(h)
	if st.Variety == xsd.VarietyList {
		return &jsonschema.Schema{Type: "array", Items: g.simpleTypeSchema(st.ItemType)}
	}
	if st.Variety == xsd.VarietyUnion {
		var alts []*jsonschema.Schema
		for _, m := range st.MemberTypes {
			alts = append(alts, g.simpleTypeSchema(m))
		}
		return &jsonschema.Schema{AnyOf: alts}
	}

	jsType, format := primitiveJSONType(st.Name.Local)
	out := &jsonschema.Schema{Type: jsType}
	if format != "" {
		out.Format = format
	}
	for _, fh := range st.Facets {
		applyFacet(out, g.schema.Arena.ConstrainingFacet(fh))
	}
	return out
}

func primitiveJSONType(local string) (jsType, format string) {
	switch local {
	case "boolean":
		return "boolean", ""
	case "decimal", "float", "double", "integer", "int", "long", "short", "byte",
		"nonNegativeInteger", "positiveInteger", "nonPositiveInteger", "negativeInteger",
		"unsignedLong", "unsignedInt", "unsignedShort", "unsignedByte":
		return "number", ""
	case "dateTime":
		return "string", "date-time"
	case "date":
		return "string", "date"
	case "time":
		return "string", "time"
	case "anyURI":
		return "string", "uri"
	default:
		return "string", ""
	}
}

func applyFacet(out *jsonschema.Schema, f xsd.ConstrainingFacet) {
	switch f.Kind {
	case xsd.FacetPattern:
		out.Pattern = f.Pattern
	case xsd.FacetEnumeration:
		for _, v := range f.Values {
			out.Enum = append(out.Enum, v)
		}
	case xsd.FacetMinLength:
		if n, err := strconv.Atoi(f.Value); err == nil {
			out.MinLength = &n
		}
	case xsd.FacetMaxLength:
		if n, err := strconv.Atoi(f.Value); err == nil {
			out.MaxLength = &n
		}
	}
}
