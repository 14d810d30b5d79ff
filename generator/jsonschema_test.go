package generator

import (
	"context"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/schemarena/xsd11"
)

func mustSchema(t *testing.T, xml string) *xsd.Schema {
	t.Helper()
	doc, err := xmldom.NewDecoderFromBytes([]byte(xml)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	schema, err := xsd.Parse(context.Background(), doc, xsd.BuildOptions{
		RegisterBuiltins: xsd.RegisterBuiltinsYes,
		BuiltinOverwrite: xsd.OverwriteDeny,
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return schema
}

func TestGenerateObjectSchemaFromComplexType(t *testing.T) {
	schema := mustSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Person" type="tns:PersonType"/>
		<xs:complexType name="PersonType">
			<xs:sequence>
				<xs:element name="name" type="xs:string"/>
				<xs:element name="age" type="xs:int" minOccurs="0"/>
			</xs:sequence>
			<xs:attribute name="id" type="xs:string" use="required"/>
		</xs:complexType>
	</xs:schema>`)

	g := NewJSONSchemaGenerator(schema)
	out, err := g.Generate(xsd.QName{Namespace: "urn:test", Local: "Person"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Type != "object" {
		t.Fatalf("expected object schema, got %q", out.Type)
	}
	if _, ok := out.Properties["name"]; !ok {
		t.Fatal("expected a 'name' property")
	}
	if _, ok := out.Properties["age"]; !ok {
		t.Fatal("expected an 'age' property")
	}
	if _, ok := out.Properties["id"]; !ok {
		t.Fatal("expected an 'id' attribute property")
	}

	foundID, foundName := false, false
	for _, r := range out.Required {
		if r == "id" {
			foundID = true
		}
		if r == "name" {
			foundName = true
		}
	}
	if !foundID {
		t.Fatal("expected 'id' (a required attribute) in Required")
	}
	if !foundName {
		t.Fatal("expected 'name' (minOccurs default 1) in Required")
	}
	for _, r := range out.Required {
		if r == "age" {
			t.Fatal("'age' has minOccurs=0 and must not be required")
		}
	}
}

func TestGenerateArrayForUnboundedElement(t *testing.T) {
	schema := mustSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Bag" type="tns:BagType"/>
		<xs:complexType name="BagType">
			<xs:sequence>
				<xs:element name="item" type="xs:string" maxOccurs="unbounded"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`)

	g := NewJSONSchemaGenerator(schema)
	out, err := g.Generate(xsd.QName{Namespace: "urn:test", Local: "Bag"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	item, ok := out.Properties["item"]
	if !ok {
		t.Fatal("expected an 'item' property")
	}
	if item.Type != "array" || item.Items == nil {
		t.Fatalf("expected 'item' to render as a JSON array, got %+v", item)
	}
}

func TestGenerateStringSchemaForSimpleElement(t *testing.T) {
	schema := mustSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="Zip" type="xs:string"/>
	</xs:schema>`)

	g := NewJSONSchemaGenerator(schema)
	out, err := g.Generate(xsd.QName{Namespace: "urn:test", Local: "Zip"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Type != "string" {
		t.Fatalf("expected a string schema for xs:string, got %q", out.Type)
	}
}
