package xsd

import "testing"

// buildElementParticle creates a trivial element declaration named local in the
// given arena and wraps it as a mandatory, single-occurrence particle.
func buildElementParticle(a *Arena, local string) Handle[Particle] {
	eh := a.CreateElementDeclaration(ElementDeclaration{Name: QName{Local: local}})
	return a.CreateParticle(Particle{Min: 1, Max: boundedMax(1), TermKind: TermElement, Element: eh})
}

func TestAutomatonSequenceAcceptsInOrder(t *testing.T) {
	a := NewArena()
	p1 := buildElementParticle(a, "a")
	p2 := buildElementParticle(a, "b")
	group := a.CreateModelGroup(ModelGroup{Compositor: CompositorSequence, Particles: []Handle[Particle]{p1, p2}})
	root := a.CreateParticle(Particle{Min: 1, Max: boundedMax(1), TermKind: TermModelGroup, Group: group})

	frozen, err := a.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	dfa, err := buildParticleAutomaton(frozen, root)
	if err != nil {
		t.Fatalf("buildParticleAutomaton: %v", err)
	}
	if err := checkUPA(frozen, dfa); err != nil {
		t.Fatalf("checkUPA: %v", err)
	}

	state := dfa.start
	for _, name := range []string{"a", "b"} {
		next, ok := transitionFor(dfa, state, QName{Local: name})
		if !ok {
			t.Fatalf("no transition for %q from state %d", name, state)
		}
		state = next
	}
	if !dfa.accepts[state] {
		t.Fatal("expected an accepting state after consuming a, b")
	}
}

func TestAutomatonChoiceRejectsUnrelatedElement(t *testing.T) {
	a := NewArena()
	p1 := buildElementParticle(a, "a")
	p2 := buildElementParticle(a, "b")
	group := a.CreateModelGroup(ModelGroup{Compositor: CompositorChoice, Particles: []Handle[Particle]{p1, p2}})
	root := a.CreateParticle(Particle{Min: 1, Max: boundedMax(1), TermKind: TermModelGroup, Group: group})

	frozen, err := a.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	dfa, err := buildParticleAutomaton(frozen, root)
	if err != nil {
		t.Fatalf("buildParticleAutomaton: %v", err)
	}

	if _, ok := transitionFor(dfa, dfa.start, QName{Local: "c"}); ok {
		t.Fatal("a choice of a|b must not accept an unrelated element c")
	}
}

func TestCheckUPADetectsAmbiguousChoice(t *testing.T) {
	a := NewArena()
	p1 := buildElementParticle(a, "a")
	p2 := buildElementParticle(a, "a") // same name, different declaration: ambiguous
	group := a.CreateModelGroup(ModelGroup{Compositor: CompositorChoice, Particles: []Handle[Particle]{p1, p2}})
	root := a.CreateParticle(Particle{Min: 1, Max: boundedMax(1), TermKind: TermModelGroup, Group: group})

	frozen, err := a.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	dfa, err := buildParticleAutomaton(frozen, root)
	if err != nil {
		t.Fatalf("buildParticleAutomaton: %v", err)
	}
	if err := checkUPA(frozen, dfa); err == nil {
		t.Fatal("two choice branches both named 'a' must fail Unique Particle Attribution")
	}
}

func TestAutomatonAllCompositorIsUnsupported(t *testing.T) {
	a := NewArena()
	p1 := buildElementParticle(a, "a")
	group := a.CreateModelGroup(ModelGroup{Compositor: CompositorAll, Particles: []Handle[Particle]{p1}})
	root := a.CreateParticle(Particle{Min: 1, Max: boundedMax(1), TermKind: TermModelGroup, Group: group})

	frozen, err := a.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if _, err := buildParticleAutomaton(frozen, root); err == nil {
		t.Fatal("xs:all must be rejected, not silently compiled")
	}
}

func transitionFor(a *automaton, state int, qn QName) (int, bool) {
	for _, tr := range a.states[state].transitions {
		if !tr.label.isWildcard && tr.label.element == qn {
			return tr.to, true
		}
	}
	return 0, false
}
