package xsd

import "testing"

func TestComplexTypeAttributeUseRequired(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:complexType name="Widget">
			<xs:attribute name="id" type="xs:string" use="required"/>
			<xs:attribute name="label" type="xs:string"/>
		</xs:complexType>
	</xs:schema>`, defaultOpts())

	ref := schema.Types[QName{Namespace: "urn:test", Local: "Widget"}]
	ct := schema.Arena.ComplexTypeDefinition(ref.Complex)
	if len(ct.AttributeUses) != 2 {
		t.Fatalf("expected 2 attribute uses, got %d", len(ct.AttributeUses))
	}

	var sawRequired, sawOptional bool
	for _, uh := range ct.AttributeUses {
		use := schema.Arena.AttributeUse(uh)
		decl := schema.Arena.AttributeDeclaration(use.Declaration)
		switch decl.Name.Local {
		case "id":
			sawRequired = use.Required
		case "label":
			sawOptional = !use.Required
		}
	}
	if !sawRequired {
		t.Fatal("expected attribute 'id' to be required")
	}
	if !sawOptional {
		t.Fatal("expected attribute 'label' to default to optional")
	}
}

func TestElementWithoutTypeDefaultsToAnyType(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:element name="Anything"/>
	</xs:schema>`, defaultOpts())

	h := schema.Elements[QName{Namespace: "urn:test", Local: "Anything"}]
	decl := schema.Arena.ElementDeclaration(h)
	if !decl.TypeDefinition.IsComplex() || decl.TypeDefinition.Complex != schema.Builtins.AnyType {
		t.Fatal("expected an untyped element to default to xs:anyType")
	}
}

func TestSubstitutionGroupInheritsAffiliationType(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test" xmlns:tns="urn:test">
		<xs:element name="base" type="xs:string"/>
		<xs:element name="derived" substitutionGroup="tns:base"/>
	</xs:schema>`, defaultOpts())

	baseH := schema.Elements[QName{Namespace: "urn:test", Local: "base"}]
	derivedH := schema.Elements[QName{Namespace: "urn:test", Local: "derived"}]
	derived := schema.Arena.ElementDeclaration(derivedH)

	if len(derived.SubstitutionGroupAffiliations) != 1 || derived.SubstitutionGroupAffiliations[0] != baseH {
		t.Fatal("expected 'derived' to record 'base' as its substitution-group affiliation")
	}
	if !derived.TypeDefinition.IsSimple() {
		t.Fatal("expected 'derived' to inherit 'base's simple type when it declares none of its own")
	}
}
