package xsd

// checkUPA implements step 4 of §4.6: for each DFA state, no two outgoing
// transitions may overlap. Returns an error for the first overlapping pair found, or nil
// if the automaton satisfies Unique Particle Attribution.
func checkUPA(arena *FrozenArena, a *automaton) error {
	for _, st := range a.states {
		for i := 0; i < len(st.transitions); i++ {
			for j := i + 1; j < len(st.transitions); j++ {
				if labelsOverlap(arena, st.transitions[i].label, st.transitions[j].label) {
					return newError(ErrUnsupportedFeature, "ambiguous content model: Unique Particle Attribution violated")
				}
			}
		}
	}
	return nil
}

func labelsOverlap(arena *FrozenArena, a, b transitionLabel) bool {
	switch {
	case !a.isWildcard && !b.isWildcard:
		return a.element == b.element
	case a.isWildcard && b.isWildcard:
		return wildcardRangesOverlap(arena.Wildcard(a.wildcard), arena.Wildcard(b.wildcard))
	case a.isWildcard:
		return namespaceInWildcard(arena.Wildcard(a.wildcard), b.element.Namespace)
	default:
		return namespaceInWildcard(arena.Wildcard(b.wildcard), a.element.Namespace)
	}
}

func namespaceInWildcard(w Wildcard, ns string) bool {
	switch w.Namespace.Variety {
	case NSAny:
		return true
	case NSEnumeration:
		return containsString(w.Namespace.Namespaces, ns)
	case NSNot:
		return !containsString(w.Namespace.Namespaces, ns)
	}
	return false
}

// wildcardRangesOverlap conservatively reports two wildcards as overlapping
// whenever it cannot prove their namespace ranges are disjoint — "any"
// overlaps everything, two enumerations overlap iff they share a member,
// two negations always overlap (both exclude only a finite set, so the
// remaining universe is shared), and an enumeration vs. a negation overlaps
// unless every enumerated namespace is exactly the excluded set.
func wildcardRangesOverlap(a, b Wildcard) bool {
	if a.Namespace.Variety == NSAny || b.Namespace.Variety == NSAny {
		return true
	}
	if a.Namespace.Variety == NSNot && b.Namespace.Variety == NSNot {
		return true
	}
	if a.Namespace.Variety == NSEnumeration && b.Namespace.Variety == NSEnumeration {
		for _, x := range a.Namespace.Namespaces {
			if containsString(b.Namespace.Namespaces, x) {
				return true
			}
		}
		return false
	}
	enum, not := a, b
	if a.Namespace.Variety == NSNot {
		enum, not = b, a
	}
	for _, x := range enum.Namespace.Namespaces {
		if !containsString(not.Namespace.Namespaces, x) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
