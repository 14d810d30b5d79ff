package xsd

import "testing"

func TestSymbolSpaceRegisterAndResolve(t *testing.T) {
	s := newSymbolSpace[ElementDeclaration]()
	qn := QName{Namespace: "urn:test", Local: "foo"}
	h := Handle[ElementDeclaration]{}

	if err := s.register(qn, h, OverwriteDeny, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := s.resolve(qn); !ok {
		t.Fatal("expected to resolve just-registered name")
	}

	if err := s.register(qn, h, OverwriteDeny, nil); err == nil {
		t.Fatal("duplicate registration of a non-builtin name must fail regardless of overwrite policy")
	}
}

func TestSymbolSpaceBuiltinOverwritePolicies(t *testing.T) {
	qn := xsQName("string")
	isBuiltin := func(n QName) bool { return n == qn }

	t.Run("deny", func(t *testing.T) {
		s := newSymbolSpace[AttributeDeclaration]()
		_ = s.register(qn, Handle[AttributeDeclaration]{}, OverwriteDeny, isBuiltin)
		if err := s.register(qn, Handle[AttributeDeclaration]{}, OverwriteDeny, isBuiltin); err == nil {
			t.Fatal("OverwriteDeny must reject a built-in collision")
		}
	})

	t.Run("warn allows the overwrite", func(t *testing.T) {
		s := newSymbolSpace[AttributeDeclaration]()
		_ = s.register(qn, Handle[AttributeDeclaration]{}, OverwriteWarn, isBuiltin)
		if err := s.register(qn, Handle[AttributeDeclaration]{}, OverwriteWarn, isBuiltin); err != nil {
			t.Fatalf("OverwriteWarn should allow the overwrite, got %v", err)
		}
	})

	t.Run("allow", func(t *testing.T) {
		s := newSymbolSpace[AttributeDeclaration]()
		_ = s.register(qn, Handle[AttributeDeclaration]{}, OverwriteAllow, isBuiltin)
		if err := s.register(qn, Handle[AttributeDeclaration]{}, OverwriteAllow, isBuiltin); err != nil {
			t.Fatalf("OverwriteAllow should allow the overwrite, got %v", err)
		}
	})
}

func TestTypeSymbolSpaceSharesSimpleAndComplex(t *testing.T) {
	s := newTypeSymbolSpace()
	simpleName := QName{Namespace: "urn:test", Local: "Shared"}

	if err := s.register(simpleName, SimpleTypeRef(Handle[SimpleTypeDefinition]{index: 1}), OverwriteDeny, nil); err != nil {
		t.Fatalf("register simple: %v", err)
	}

	// A complex type with the same name collides in the shared space even
	// though no complex type space has been touched directly (invariant 2).
	if err := s.register(simpleName, ComplexTypeRef(Handle[ComplexTypeDefinition]{index: 1}), OverwriteDeny, nil); err == nil {
		t.Fatal("simple and complex types must share one name table")
	}

	if _, ok := s.resolveComplex(simpleName); ok {
		t.Fatal("resolveComplex must not narrow-match a simple-type entry")
	}
	if _, ok := s.resolveSimple(simpleName); !ok {
		t.Fatal("resolveSimple should find the registered simple type")
	}
}
