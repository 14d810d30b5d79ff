package xsd

import (
	"context"
	"sync"
	"testing"
)

type countingResolver struct {
	mu    sync.Mutex
	calls int
	sch   *Schema
}

func (r *countingResolver) Resolve(ctx context.Context, imp Import) (*Schema, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.sch, nil
}

func TestImportChaserDedupsRepeatedRequests(t *testing.T) {
	resolver := &countingResolver{sch: &Schema{TargetNamespace: "urn:imported"}}
	chaser := newImportChaser([]ImportResolver{resolver})

	imp := Import{Namespace: "urn:imported", SchemaLocation: "imported.xsd"}
	for i := 0; i < 5; i++ {
		schema, err := chaser.Chase(context.Background(), imp)
		if err != nil {
			t.Fatalf("Chase: %v", err)
		}
		if schema != resolver.sch {
			t.Fatal("expected the same cached *Schema to be returned")
		}
	}

	if resolver.calls != 1 {
		t.Fatalf("expected exactly 1 underlying resolve call for 5 identical Chase calls, got %d", resolver.calls)
	}
}

func TestImportChaserDistinguishesByNamespaceAndLocation(t *testing.T) {
	resolver := &countingResolver{sch: &Schema{TargetNamespace: "urn:imported"}}
	chaser := newImportChaser([]ImportResolver{resolver})

	_, _ = chaser.Chase(context.Background(), Import{Namespace: "urn:a", SchemaLocation: "a.xsd"})
	_, _ = chaser.Chase(context.Background(), Import{Namespace: "urn:b", SchemaLocation: "b.xsd"})

	if resolver.calls != 2 {
		t.Fatalf("expected 2 distinct underlying resolve calls, got %d", resolver.calls)
	}
}

func TestImportChaserDedupsImportByNamespaceAloneAcrossLocations(t *testing.T) {
	resolver := &countingResolver{sch: &Schema{TargetNamespace: "urn:imported"}}
	chaser := newImportChaser([]ImportResolver{resolver})

	first, err := chaser.Chase(context.Background(), Import{Namespace: "urn:imported", SchemaLocation: "primary.xsd"})
	if err != nil {
		t.Fatalf("Chase: %v", err)
	}
	second, err := chaser.Chase(context.Background(), Import{Namespace: "urn:imported", SchemaLocation: "mirror.xsd"})
	if err != nil {
		t.Fatalf("Chase: %v", err)
	}

	if resolver.calls != 1 {
		t.Fatalf("expected the second import to be ignored (same namespace, different location), got %d resolver calls", resolver.calls)
	}
	if first != second {
		t.Fatal("expected both Chase calls to return the same cached *Schema")
	}
}

func TestImportChaserIncludesDedupByLocationNotJustNamespace(t *testing.T) {
	resolver := &countingResolver{sch: &Schema{TargetNamespace: ""}}
	chaser := newImportChaser([]ImportResolver{resolver})

	_, _ = chaser.Chase(context.Background(), Import{SchemaLocation: "part1.xsd", IsInclude: true})
	_, _ = chaser.Chase(context.Background(), Import{SchemaLocation: "part2.xsd", IsInclude: true})

	if resolver.calls != 2 {
		t.Fatalf("expected 2 distinct resolve calls for 2 differently-located includes, got %d", resolver.calls)
	}
}

func TestImportChaserFallsThroughUnsupportedResolvers(t *testing.T) {
	declining := declineResolver{}
	accepting := &countingResolver{sch: &Schema{TargetNamespace: "urn:imported"}}
	chaser := newImportChaser([]ImportResolver{declining, accepting})

	imp := Import{Namespace: "urn:imported", SchemaLocation: "imported.xsd"}
	schema, err := chaser.Chase(context.Background(), imp)
	if err != nil {
		t.Fatalf("Chase: %v", err)
	}
	if schema != accepting.sch {
		t.Fatal("expected the chaser to fall through to the second resolver after the first declined")
	}
}

type declineResolver struct{}

func (declineResolver) Resolve(ctx context.Context, imp Import) (*Schema, error) {
	return nil, &ErrUnsupportedImport{Import: imp}
}
