package xsd

import "testing"

func TestRegisterBuiltinsClosure(t *testing.T) {
	arena := NewArena()
	resolver := NewResolver(OverwriteDeny)

	b, err := RegisterBuiltins(arena, resolver)
	if err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	want := []string{
		"string", "boolean", "decimal", "float", "double", "duration",
		"dateTime", "time", "date", "anyURI", "QName", "base64Binary",
	}
	for _, name := range want {
		if _, ok := b.Primitives[name]; !ok {
			t.Errorf("missing primitive %q", name)
		}
	}

	wantDerived := []string{"integer", "nonNegativeInteger", "NMTOKEN", "ID", "IDREF", "token", "normalizedString"}
	for _, name := range wantDerived {
		if _, ok := b.Derived[name]; !ok {
			t.Errorf("missing derived type %q", name)
		}
	}

	frozen, err := arena.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	anyType := frozen.ComplexTypeDefinition(b.AnyType)
	if anyType.BaseType.Complex != b.AnyType {
		t.Fatal("xs:anyType must be its own base (self-referential root)")
	}

	if h, ok := resolver.Types.resolveComplex(xsQName("anyType")); !ok || h != b.AnyType {
		t.Fatal("xs:anyType must resolve through the shared type symbol space")
	}
}

func TestBuiltinOverwritePolicy(t *testing.T) {
	arena := NewArena()
	resolver := NewResolver(OverwriteDeny)
	b, err := RegisterBuiltins(arena, resolver)
	if err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	err = resolver.RegisterType(xsQName("string"), SimpleTypeRef(b.Primitives["string"]))
	if err == nil {
		t.Fatal("re-registering a built-in under OverwriteDeny should fail")
	}
}
