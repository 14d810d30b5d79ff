package xsd

import (
	"context"
	"strings"
	"testing"

	"github.com/agentflare-ai/go-xmldom"
)

func mustParseSchema(t *testing.T, xml string, opts BuildOptions) *Schema {
	t.Helper()
	doc, err := xmldom.NewDecoderFromBytes([]byte(xml)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	schema, err := Parse(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return schema
}

func defaultOpts() BuildOptions {
	return BuildOptions{RegisterBuiltins: RegisterBuiltinsYes, BuiltinOverwrite: OverwriteDeny}
}

// S1: a minimal schema with one top-level element of a built-in simple
// type must register the element and resolve its type through the
// built-in closure.
func TestScenarioSimpleElement(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="greeting" type="xs:string"/>
	</xs:schema>`, defaultOpts())

	qn := QName{Namespace: "urn:test", Local: "greeting"}
	h, ok := schema.Elements[qn]
	if !ok {
		t.Fatal("expected top-level element 'greeting' to be registered")
	}
	decl := schema.Arena.ElementDeclaration(h)
	if !decl.TypeDefinition.IsSimple() {
		t.Fatal("greeting's type must resolve to a simple type")
	}
}

// S2: a complex type with a sequence of two elements must compile to a
// DFA accepting that order.
func TestScenarioComplexTypeSequence(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="root" type="tns:RootType" xmlns:tns="urn:test"/>
		<xs:complexType name="RootType">
			<xs:sequence>
				<xs:element name="a" type="xs:string"/>
				<xs:element name="b" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	typeRef, ok := schema.Types[QName{Namespace: "urn:test", Local: "RootType"}]
	if !ok || !typeRef.IsComplex() {
		t.Fatal("expected RootType to be registered as a complex type")
	}
	ct := schema.Arena.ComplexTypeDefinition(typeRef.Complex)
	if ct.Content.Variety != ContentElementOnly {
		t.Fatalf("expected element-only content, got %v", ct.Content.Variety)
	}
	if schema.Automaton(typeRef.Complex) == nil {
		t.Fatal("expected a compiled automaton for an element-only complex type")
	}
}

// S3: registering the same top-level element name twice must fail with
// ErrDuplicateComponent surfaced through Parse.
func TestScenarioDuplicateTopLevelName(t *testing.T) {
	doc, err := xmldom.NewDecoderFromBytes([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="dup" type="xs:string"/>
		<xs:element name="dup" type="xs:string"/>
	</xs:schema>`)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = Parse(context.Background(), doc, defaultOpts())
	if err == nil {
		t.Fatal("expected a duplicate top-level <element name=\"dup\"> to fail")
	}
	serr, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if serr.Code != ErrDuplicateComponent {
		t.Fatalf("expected ErrDuplicateComponent, got %v", serr.Code)
	}
}

// S4: two complex types that extend each other must be rejected as a
// circular dependency rather than hang or stack-overflow.
func TestScenarioCircularExtension(t *testing.T) {
	doc, err := xmldom.NewDecoderFromBytes([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:complexType name="A">
			<xs:complexContent>
				<xs:extension base="tns:B"/>
			</xs:complexContent>
		</xs:complexType>
		<xs:complexType name="B">
			<xs:complexContent>
				<xs:extension base="tns:A"/>
			</xs:complexContent>
		</xs:complexType>
	</xs:schema>`)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = Parse(context.Background(), doc, defaultOpts())
	if err == nil {
		t.Fatal("expected A/B mutual extension to fail as circular")
	}
	serr, ok := err.(*SchemaError)
	if !ok || serr.Code != ErrCircularDependency {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
}

// S5: an <xs:import> is chased through the injected ImportResolver and its
// top-level names become visible to the importing schema's own resolver.
type stubImportResolver struct {
	schemas map[string]*Schema
}

func (s stubImportResolver) Resolve(ctx context.Context, imp Import) (*Schema, error) {
	child, ok := s.schemas[imp.Namespace]
	if !ok {
		return nil, &ErrUnsupportedImport{Import: imp}
	}
	return child, nil
}

func TestScenarioImportMerging(t *testing.T) {
	imported := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:imported">
		<xs:element name="shared" type="xs:string"/>
	</xs:schema>`, defaultOpts())

	opts := defaultOpts()
	opts.Importers = []ImportResolver{stubImportResolver{schemas: map[string]*Schema{"urn:imported": imported}}}

	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:main"
			xmlns:imp="urn:imported">
		<xs:import namespace="urn:imported" schemaLocation="imported.xsd"/>
		<xs:element name="wrapper" type="xs:string"/>
	</xs:schema>`, opts)

	if _, ok := schema.Elements[QName{Namespace: "urn:imported", Local: "shared"}]; !ok {
		t.Fatal("expected the imported schema's top-level element to be merged into the importer's resolver")
	}
}

// S6: an ambiguous choice (Unique Particle Attribution violation) inside a
// complex type must surface as a build-time error from Parse, not a
// validator-time one.
func TestScenarioAmbiguousContentModelFailsAtBuild(t *testing.T) {
	doc, err := xmldom.NewDecoderFromBytes([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="root" type="tns:RootType"/>
		<xs:complexType name="RootType">
			<xs:choice>
				<xs:element name="a" type="xs:string"/>
				<xs:element name="a" type="xs:int"/>
			</xs:choice>
		</xs:complexType>
	</xs:schema>`)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = Parse(context.Background(), doc, defaultOpts())
	if err == nil {
		t.Fatal("expected an ambiguous choice of two particles both named 'a' to fail UPA at build time")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "ambiguous") {
		t.Fatalf("expected a UPA-ambiguity error, got: %v", err)
	}
}
