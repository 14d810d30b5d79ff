package xsd

import "testing"

func TestNamedGroupReferencedFromComplexType(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:group name="NameFields">
			<xs:sequence>
				<xs:element name="first" type="xs:string"/>
				<xs:element name="last" type="xs:string"/>
			</xs:sequence>
		</xs:group>
		<xs:element name="Person" type="tns:PersonType"/>
		<xs:complexType name="PersonType">
			<xs:sequence>
				<xs:group ref="tns:NameFields"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	gh, ok := schema.Groups[QName{Namespace: "urn:test", Local: "NameFields"}]
	if !ok {
		t.Fatal("expected NameFields to be registered as a named group")
	}
	def := schema.Arena.ModelGroupDefinition(gh)
	mg := schema.Arena.ModelGroup(def.ModelGroup)
	if len(mg.Particles) != 2 {
		t.Fatalf("expected 2 particles in NameFields, got %d", len(mg.Particles))
	}

	typeRef := schema.Types[QName{Namespace: "urn:test", Local: "PersonType"}]
	ct := schema.Arena.ComplexTypeDefinition(typeRef.Complex)
	if schema.Automaton(typeRef.Complex) == nil {
		t.Fatal("expected PersonType's group-ref content to still compile to an automaton")
	}
	_ = ct
}

func TestAttributeGroupDefinitionAndUses(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:attributeGroup name="Common">
			<xs:attribute name="id" type="xs:string" use="required"/>
		</xs:attributeGroup>
	</xs:schema>`, defaultOpts())

	h, ok := schema.AttrGroups[QName{Namespace: "urn:test", Local: "Common"}]
	if !ok {
		t.Fatal("expected Common to be registered as a named attribute group")
	}
	def := schema.Arena.AttributeGroupDefinition(h)
	if len(def.Uses) != 1 {
		t.Fatalf("expected 1 attribute use in Common, got %d", len(def.Uses))
	}
	use := schema.Arena.AttributeUse(def.Uses[0])
	if !use.Required {
		t.Fatal("expected the 'id' attribute use to be required")
	}
}

func TestIdentityConstraintKey(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="Catalog" type="tns:CatalogType">
			<xs:key name="ItemID">
				<xs:selector xpath="item"/>
				<xs:field xpath="@id"/>
			</xs:key>
		</xs:element>
		<xs:complexType name="CatalogType">
			<xs:sequence>
				<xs:element name="item" type="xs:string" maxOccurs="unbounded"/>
			</xs:sequence>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	h := schema.Elements[QName{Namespace: "urn:test", Local: "Catalog"}]
	decl := schema.Arena.ElementDeclaration(h)
	if len(decl.IdentityConstraints) != 1 {
		t.Fatalf("expected 1 identity constraint on Catalog, got %d", len(decl.IdentityConstraints))
	}
	ic := schema.Arena.IdentityConstraintDefinition(decl.IdentityConstraints[0])
	if ic.Category != ICKey {
		t.Fatalf("expected category ICKey, got %v", ic.Category)
	}
	if len(ic.Fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(ic.Fields))
	}
}
