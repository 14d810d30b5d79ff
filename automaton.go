package xsd

import (
	"fmt"
	"sort"
)

// automaton is the compiled content model for one complex type's particle,
// a deterministic, ε-free DFA over expanded-name/wildcard transition
// labels (§4.6). Built once at schema-construction time and shared
// read-only by the validator (C7).
type automaton struct {
	states   []dfaState
	start    int
	accepts  map[int]bool
}

type transitionLabel struct {
	isWildcard bool
	element    QName          // meaningful when !isWildcard
	wildcard   Handle[Wildcard] // meaningful when isWildcard
	// elementDecl is the declaration the element label was compiled from;
	// labelKey keys element labels by it, so two distinct declarations of
	// the same name stay separate transitions for checkUPA to compare.
	elementDecl Handle[ElementDeclaration]
}

type dfaTransition struct {
	label transitionLabel
	to    int
}

type dfaState struct {
	transitions []dfaTransition
}

// nfaBuilder accumulates the Thompson-style NFA: the outgoing edge list of
// every state, which fragments (start/accept state-id pairs) refer into.
type nfaBuilder struct {
	arena *FrozenArena
	// edges[s] is the outgoing edge list of NFA state s; a nil label means ε.
	edges [][]nfaEdge
}

type nfaEdge struct {
	label *transitionLabel // nil for ε
	to    int
}

func newNFABuilder(arena *FrozenArena) *nfaBuilder {
	return &nfaBuilder{arena: arena}
}

func (b *nfaBuilder) newState() int {
	b.edges = append(b.edges, nil)
	return len(b.edges) - 1
}

func (b *nfaBuilder) addEdge(from int, label *transitionLabel, to int) {
	b.edges[from] = append(b.edges[from], nfaEdge{label: label, to: to})
}

type fragment struct{ start, accept int }

// buildParticleAutomaton compiles a complex type's content particle into a
// DFA per spec.md §4.6 steps 1-3. Callers (the driver, after Freeze) invoke
// this once per element-only/mixed complex type and cache the result.
func buildParticleAutomaton(arena *FrozenArena, root Handle[Particle]) (*automaton, error) {
	b := newNFABuilder(arena)
	frag, err := b.compileParticle(root)
	if err != nil {
		return nil, err
	}

	closures := b.epsilonClosures()
	return b.subsetConstruct(frag, closures), nil
}

func (b *nfaBuilder) compileParticle(h Handle[Particle]) (fragment, error) {
	p := b.arena.Particle(h)
	term, err := b.compileTerm(p)
	if err != nil {
		return fragment{}, err
	}
	return b.repeat(term, p.Min, p.Max)
}

func (b *nfaBuilder) compileTerm(p Particle) (fragment, error) {
	switch p.TermKind {
	case TermElement:
		s, a := b.newState(), b.newState()
		lbl := transitionLabel{element: b.arena.ElementDeclaration(p.Element).Name, elementDecl: p.Element}
		b.addEdge(s, &lbl, a)
		return fragment{s, a}, nil
	case TermWildcard:
		s, a := b.newState(), b.newState()
		lbl := transitionLabel{isWildcard: true, wildcard: p.Wildcard}
		b.addEdge(s, &lbl, a)
		return fragment{s, a}, nil
	case TermModelGroup:
		return b.compileGroup(p.Group)
	}
	return fragment{}, fmt.Errorf("xsd: internal: unknown term kind %d", p.TermKind)
}

func (b *nfaBuilder) compileGroup(h Handle[ModelGroup]) (fragment, error) {
	g := b.arena.ModelGroup(h)
	switch g.Compositor {
	case CompositorAll:
		return fragment{}, newError(ErrUnsupportedFeature, "xs:all content model is unsupported (v1)")
	case CompositorSequence:
		return b.compileSequence(g.Particles)
	case CompositorChoice:
		return b.compileChoice(g.Particles)
	}
	return fragment{}, fmt.Errorf("xsd: internal: unknown compositor %d", g.Compositor)
}

func (b *nfaBuilder) compileSequence(particles []Handle[Particle]) (fragment, error) {
	if len(particles) == 0 {
		s := b.newState()
		return fragment{s, s}, nil
	}
	first, err := b.compileParticle(particles[0])
	if err != nil {
		return fragment{}, err
	}
	cur := first
	for _, ph := range particles[1:] {
		next, err := b.compileParticle(ph)
		if err != nil {
			return fragment{}, err
		}
		b.addEdge(cur.accept, nil, next.start)
		cur = fragment{first.start, next.accept}
	}
	return cur, nil
}

func (b *nfaBuilder) compileChoice(particles []Handle[Particle]) (fragment, error) {
	s, a := b.newState(), b.newState()
	if len(particles) == 0 {
		b.addEdge(s, nil, a)
		return fragment{s, a}, nil
	}
	for _, ph := range particles {
		frag, err := b.compileParticle(ph)
		if err != nil {
			return fragment{}, err
		}
		b.addEdge(s, nil, frag.start)
		b.addEdge(frag.accept, nil, a)
	}
	return fragment{s, a}, nil
}

// repeat implements step 1's occurrence unrolling: m mandatory copies
// chained, then (M-m) optional copies, with a loopback ε-edge when max is
// unbounded.
func (b *nfaBuilder) repeat(term fragment, min int, max OccursBound) (fragment, error) {
	if min == 1 && !max.Unbounded && max.Value == 1 {
		return term, nil
	}

	s, a := b.newState(), b.newState()
	cur := s

	clone := func() fragment {
		// Copy every state reachable from term.start (right after
		// compileTerm no edge leaves the term's own states), so each copy
		// has states of its own and copies never merge.
		m := map[int]int{term.start: b.newState()}
		for stack := []int{term.start}; len(stack) > 0; {
			st := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range b.edges[st] {
				if _, ok := m[e.to]; !ok {
					m[e.to] = b.newState()
					stack = append(stack, e.to)
				}
				b.addEdge(m[st], e.label, m[e.to])
			}
		}
		return fragment{m[term.start], m[term.accept]}
	}

	for i := 0; i < min; i++ {
		f := clone()
		b.addEdge(cur, nil, f.start)
		cur = f.accept
	}

	if max.Unbounded {
		f := clone()
		b.addEdge(cur, nil, f.start)
		b.addEdge(f.accept, nil, f.start) // loopback: one optional copy re-enterable
		b.addEdge(f.start, nil, f.accept) // optional: may be skipped
		cur = f.accept
	} else {
		optional := max.Value - min
		for i := 0; i < optional; i++ {
			f := clone()
			b.addEdge(cur, nil, f.start)
			b.addEdge(f.start, nil, f.accept)
			cur = f.accept
		}
	}

	b.addEdge(cur, nil, a)
	if min == 0 {
		b.addEdge(s, nil, a)
	}
	return fragment{s, a}, nil
}

// epsilonClosures computes, for every NFA state, the set of states
// reachable via zero or more ε-edges (step 2, worklist fixpoint).
func (b *nfaBuilder) epsilonClosures() [][]int {
	n := len(b.edges)
	closures := make([][]int, n)
	for s := 0; s < n; s++ {
		seen := map[int]bool{s: true}
		stack := []int{s}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range b.edges[cur] {
				if e.label == nil && !seen[e.to] {
					seen[e.to] = true
					stack = append(stack, e.to)
				}
			}
		}
		var out []int
		for st := range seen {
			out = append(out, st)
		}
		sort.Ints(out)
		closures[s] = out
	}
	return closures
}

// subsetConstruct implements step 3: DFA states are canonicalized NFA-state
// subsets; transitions are grouped by distinct non-ε labels.
func (b *nfaBuilder) subsetConstruct(frag fragment, closures [][]int) *automaton {
	key := func(set []int) string {
		s := make([]byte, 0, len(set)*5)
		for _, v := range set {
			s = append(s, byte(v>>24), byte(v>>16), byte(v>>8), byte(v), ',')
		}
		return string(s)
	}
	union := func(sets ...[]int) []int {
		seen := map[int]bool{}
		for _, set := range sets {
			for _, v := range set {
				seen[v] = true
			}
		}
		var out []int
		for v := range seen {
			out = append(out, v)
		}
		sort.Ints(out)
		return out
	}

	startSet := closures[frag.start]
	byKey := map[string]int{}
	var dfaStates []dfaState
	var setOf [][]int

	ensure := func(set []int) int {
		k := key(set)
		if id, ok := byKey[k]; ok {
			return id
		}
		id := len(dfaStates)
		byKey[k] = id
		dfaStates = append(dfaStates, dfaState{})
		setOf = append(setOf, set)
		return id
	}

	startID := ensure(startSet)
	queue := []int{startID}
	done := map[int]bool{}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if done[id] {
			continue
		}
		done[id] = true

		byLabel := map[string][]int{}
		labelOf := map[string]transitionLabel{}
		for _, nfaState := range setOf[id] {
			for _, e := range b.edges[nfaState] {
				if e.label == nil {
					continue
				}
				lk := labelKey(*e.label)
				labelOf[lk] = *e.label
				byLabel[lk] = append(byLabel[lk], closures[e.to]...)
			}
		}
		for lk, targets := range byLabel {
			targetSet := union(targets)
			targetID := ensure(targetSet)
			dfaStates[id].transitions = append(dfaStates[id].transitions, dfaTransition{label: labelOf[lk], to: targetID})
			if !done[targetID] {
				queue = append(queue, targetID)
			}
		}
	}

	accepts := map[int]bool{}
	for id, set := range setOf {
		for _, s := range set {
			if s == frag.accept {
				accepts[id] = true
				break
			}
		}
	}

	return &automaton{states: dfaStates, start: startID, accepts: accepts}
}

func labelKey(l transitionLabel) string {
	if l.isWildcard {
		return fmt.Sprintf("W%d", l.wildcard.Index())
	}
	return fmt.Sprintf("E%d|%s", l.elementDecl.Index(), l.element.String())
}
