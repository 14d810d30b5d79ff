package xsd

import "testing"

func TestSimpleTypeRestrictionFacets(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:simpleType name="ZipCode">
			<xs:restriction base="xs:string">
				<xs:pattern value="[0-9]{5}"/>
				<xs:minLength value="5"/>
				<xs:maxLength value="5"/>
			</xs:restriction>
		</xs:simpleType>
	</xs:schema>`, defaultOpts())

	ref, ok := schema.Types[QName{Namespace: "urn:test", Local: "ZipCode"}]
	if !ok || !ref.IsSimple() {
		t.Fatal("expected ZipCode to be registered as a simple type")
	}
	st := schema.Arena.SimpleTypeDefinition(ref.Simple)
	if st.Variety != VarietyAtomic {
		t.Fatalf("expected atomic variety, got %v", st.Variety)
	}
	if len(st.Facets) != 3 {
		t.Fatalf("expected 3 facets (pattern, minLength, maxLength), got %d", len(st.Facets))
	}

	var sawPattern, sawMinLength, sawMaxLength bool
	for _, fh := range st.Facets {
		f := schema.Arena.ConstrainingFacet(fh)
		switch f.Kind {
		case FacetPattern:
			sawPattern = true
			if f.Pattern != "[0-9]{5}" {
				t.Fatalf("unexpected pattern %q", f.Pattern)
			}
		case FacetMinLength:
			sawMinLength = true
			if f.Value != "5" {
				t.Fatalf("unexpected minLength %q", f.Value)
			}
		case FacetMaxLength:
			sawMaxLength = true
		}
	}
	if !sawPattern || !sawMinLength || !sawMaxLength {
		t.Fatalf("missing expected facets: pattern=%v minLength=%v maxLength=%v", sawPattern, sawMinLength, sawMaxLength)
	}
}

func TestSimpleTypeEnumerationCollapsesToOneFacet(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:simpleType name="Suit">
			<xs:restriction base="xs:string">
				<xs:enumeration value="clubs"/>
				<xs:enumeration value="diamonds"/>
				<xs:enumeration value="hearts"/>
				<xs:enumeration value="spades"/>
			</xs:restriction>
		</xs:simpleType>
	</xs:schema>`, defaultOpts())

	ref := schema.Types[QName{Namespace: "urn:test", Local: "Suit"}]
	st := schema.Arena.SimpleTypeDefinition(ref.Simple)
	if len(st.Facets) != 1 {
		t.Fatalf("expected the four <enumeration> children to collapse into one facet, got %d", len(st.Facets))
	}
	f := schema.Arena.ConstrainingFacet(st.Facets[0])
	if f.Kind != FacetEnumeration || len(f.Values) != 4 {
		t.Fatalf("expected one enumeration facet with 4 values, got %+v", f)
	}
}

func TestSimpleTypeListVariety(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:simpleType name="IntList">
			<xs:list itemType="xs:integer"/>
		</xs:simpleType>
	</xs:schema>`, defaultOpts())

	ref := schema.Types[QName{Namespace: "urn:test", Local: "IntList"}]
	st := schema.Arena.SimpleTypeDefinition(ref.Simple)
	if st.Variety != VarietyList {
		t.Fatalf("expected list variety, got %v", st.Variety)
	}
	if st.ItemType.IsZero() {
		t.Fatal("expected a resolved item type")
	}
}

func TestSimpleTypeUnionVariety(t *testing.T) {
	schema := mustParseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
		<xs:simpleType name="IntOrString">
			<xs:union memberTypes="xs:int xs:string"/>
		</xs:simpleType>
	</xs:schema>`, defaultOpts())

	ref := schema.Types[QName{Namespace: "urn:test", Local: "IntOrString"}]
	st := schema.Arena.SimpleTypeDefinition(ref.Simple)
	if st.Variety != VarietyUnion {
		t.Fatalf("expected union variety, got %v", st.Variety)
	}
	if len(st.MemberTypes) != 2 {
		t.Fatalf("expected 2 member types, got %d", len(st.MemberTypes))
	}
}
