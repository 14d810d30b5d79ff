package xsd

import (
	"testing"

	"github.com/agentflare-ai/go-xmldom"
)

func mustValidate(t *testing.T, schema *Schema, instanceXML string) *Validator {
	t.Helper()
	doc, err := xmldom.NewDecoderFromBytes([]byte(instanceXML)).Decode()
	if err != nil {
		t.Fatalf("decode instance: %v", err)
	}
	v := NewValidator(schema)
	if err := v.ValidateDocument(doc); err != nil {
		t.Fatalf("ValidateDocument: %v", err)
	}
	return v
}

func TestValidatorAcceptsWellFormedDocument(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test" elementFormDefault="qualified">
		<xs:element name="Pair" type="tns:PairType"/>
		<xs:complexType name="PairType">
			<xs:sequence>
				<xs:element name="a" type="xs:string"/>
				<xs:element name="b" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Pair xmlns="urn:test"><a>x</a><b>y</b></Pair>`)
	if !v.Valid() {
		t.Fatalf("expected a valid document, got failures: %+v", v.Failures())
	}
}

func TestValidatorRejectsMissingRequiredChild(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test" elementFormDefault="qualified">
		<xs:element name="Pair" type="tns:PairType"/>
		<xs:complexType name="PairType">
			<xs:sequence>
				<xs:element name="a" type="xs:string"/>
				<xs:element name="b" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Pair xmlns="urn:test"><a>x</a></Pair>`)
	if v.Valid() {
		t.Fatal("expected a missing required child <b> to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureUnacceptedEnd {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureUnacceptedEnd, got %+v", v.Failures())
	}
}

func TestValidatorRejectsUnexpectedChild(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test" elementFormDefault="qualified">
		<xs:element name="Pair" type="tns:PairType"/>
		<xs:complexType name="PairType">
			<xs:sequence>
				<xs:element name="a" type="xs:string"/>
				<xs:element name="b" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Pair xmlns="urn:test"><a>x</a><c>z</c><b>y</b></Pair>`)
	if v.Valid() {
		t.Fatal("expected an unrecognized child <c> to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureNoMatchingTransition {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureNoMatchingTransition, got %+v", v.Failures())
	}
}

func TestValidatorRejectsAbstractElement(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="Base" type="xs:string" abstract="true"/>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Base xmlns="urn:test">x</Base>`)
	if v.Valid() {
		t.Fatal("expected instantiating an abstract element directly to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureAbstractElement {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureAbstractElement, got %+v", v.Failures())
	}
}

func TestValidatorRejectsNilOnNonNillableElement(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="Plain" type="xs:string"/>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Plain xmlns="urn:test" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/>`)
	if v.Valid() {
		t.Fatal("expected xsi:nil on a non-nillable element to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureNilNotAllowed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureNilNotAllowed, got %+v", v.Failures())
	}
}

func TestValidatorRejectsMissingRequiredAttribute(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Widget" type="tns:WidgetType"/>
		<xs:complexType name="WidgetType">
			<xs:attribute name="id" type="xs:string" use="required"/>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Widget xmlns="urn:test"/>`)
	if v.Valid() {
		t.Fatal("expected a missing required attribute to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureMissingRequiredAttribute {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureMissingRequiredAttribute, got %+v", v.Failures())
	}
}

func TestValidatorRejectsProhibitedAttribute(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Widget" type="tns:WidgetType"/>
		<xs:complexType name="WidgetType">
			<xs:attribute name="legacy" type="xs:string" use="prohibited"/>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Widget xmlns="urn:test" legacy="x"/>`)
	if v.Valid() {
		t.Fatal("expected a prohibited-but-present attribute to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureProhibitedAttribute {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureProhibitedAttribute, got %+v", v.Failures())
	}
}

func TestValidatorRejectsFixedAttributeMismatch(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Widget" type="tns:WidgetType"/>
		<xs:complexType name="WidgetType">
			<xs:attribute name="version" type="xs:string" fixed="2"/>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Widget xmlns="urn:test" version="1"/>`)
	if v.Valid() {
		t.Fatal("expected a fixed-value attribute mismatch to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureFixedMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureFixedMismatch, got %+v", v.Failures())
	}

	clean := mustValidate(t, schema, `<Widget xmlns="urn:test" version="2"/>`)
	if !clean.Valid() {
		t.Fatalf("expected the matching fixed value to validate cleanly, got %+v", clean.Failures())
	}
}

func TestValidatorChecksSimpleContentOfComplexType(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Money" type="tns:MoneyType"/>
		<xs:complexType name="MoneyType">
			<xs:simpleContent>
				<xs:extension base="xs:string">
					<xs:attribute name="currency" type="xs:string"/>
				</xs:extension>
			</xs:simpleContent>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	doc, err := xmldom.NewDecoderFromBytes([]byte(`<Money xmlns="urn:test" currency="USD">bogus</Money>`)).Decode()
	if err != nil {
		t.Fatalf("decode instance: %v", err)
	}
	v := NewValidator(schema)
	v.StringValid = func(lexical string, _ Handle[SimpleTypeDefinition]) bool {
		return lexical != "bogus"
	}
	if err := v.ValidateDocument(doc); err != nil {
		t.Fatalf("ValidateDocument: %v", err)
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureSimpleTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a simpleContent complex type's text to be String-Valid-checked, got %+v", v.Failures())
	}
}

func TestValidatorAcceptsCompatibleTypeOverride(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Item" type="tns:BaseType"/>
		<xs:complexType name="BaseType">
			<xs:attribute name="id" type="xs:string"/>
		</xs:complexType>
		<xs:complexType name="DerivedType">
			<xs:complexContent>
				<xs:extension base="tns:BaseType">
					<xs:attribute name="extra" type="xs:string" use="required"/>
				</xs:extension>
			</xs:complexContent>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Item xmlns="urn:test" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:tns="urn:test" xsi:type="tns:DerivedType" extra="x"/>`)
	if !v.Valid() {
		t.Fatalf("expected a compatible xsi:type override to validate cleanly, got %+v", v.Failures())
	}
}

func TestValidatorRejectsIncompatibleTypeOverride(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Item" type="tns:BaseType"/>
		<xs:complexType name="BaseType">
			<xs:attribute name="id" type="xs:string"/>
		</xs:complexType>
		<xs:complexType name="Unrelated">
			<xs:attribute name="other" type="xs:string"/>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Item xmlns="urn:test" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:tns="urn:test" xsi:type="tns:Unrelated"/>`)
	if v.Valid() {
		t.Fatal("expected an xsi:type override to an unrelated type to fail")
	}
	found := false
	for _, f := range v.Failures() {
		if f.Kind == FailureInvalidTypeOverride {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FailureInvalidTypeOverride, got %+v", v.Failures())
	}
}

func TestValidatorAcceptsNilOnNillableElement(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="Plain" type="xs:string" nillable="true"/>
	</xs:schema>`, defaultOpts())

	v := mustValidate(t, schema, `<Plain xmlns="urn:test" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/>`)
	for _, f := range v.Failures() {
		if f.Kind == FailureNilNotAllowed {
			t.Fatalf("a nillable element must accept xsi:nil, got %+v", v.Failures())
		}
	}
}
