package xsd

import "strings"

// mapParticle implements the §4.4 particle constructor entry points: a
// local <element>, a <group>/<choice>/<sequence>/<all> model group, a
// <group ref="..."/>, or an <any> wildcard. Returns the zero handle (no
// error) for the degenerate minOccurs=maxOccurs=0 case.
func (m *mapCtx) mapParticle(n node) (Handle[Particle], error) {
	min := n.minOccurs()
	max := n.maxOccurs()
	if min == 0 && !max.Unbounded && max.Value == 0 {
		return Handle[Particle]{}, nil
	}

	switch n.localName() {
	case "element":
		return m.mapElementParticle(n, min, max)
	case "sequence", "choice", "all":
		return m.mapModelGroupParticle(n, min, max)
	case "group":
		return m.mapGroupRefParticle(n, min, max)
	case "any":
		return m.mapWildcardParticle(n, min, max)
	}
	return Handle[Particle]{}, newError(ErrUnsupportedFeature, "unrecognized particle term <"+n.localName()+">")
}

func (m *mapCtx) mapElementParticle(n node, min int, max OccursBound) (Handle[Particle], error) {
	var eh Handle[ElementDeclaration]
	if ref, ok := n.qnameAttr("ref"); ok {
		h, err := m.resolveElementRef(ref)
		if err != nil {
			return Handle[Particle]{}, err
		}
		eh = h
	} else {
		decl, err := m.mapElementDecl(n, LocalScope, DynamicHandle{})
		if err != nil {
			return Handle[Particle]{}, err
		}
		eh = m.arena().CreateElementDeclaration(decl)
	}
	return m.arena().CreateParticle(Particle{
		Min: min, Max: max, TermKind: TermElement, Element: eh,
	}), nil
}

func (m *mapCtx) mapModelGroupParticle(n node, min int, max OccursBound) (Handle[Particle], error) {
	if n.localName() == "all" {
		return Handle[Particle]{}, newError(ErrUnsupportedFeature, "xs:all content model is unsupported (v1)")
	}
	compositor := CompositorSequence
	if n.localName() == "choice" {
		compositor = CompositorChoice
	}

	var particles []Handle[Particle]
	for _, c := range n.children() {
		switch c.localName() {
		case "element", "sequence", "choice", "all", "group", "any":
			ph, err := m.mapParticle(c)
			if err != nil {
				return Handle[Particle]{}, err
			}
			if !ph.IsZero() {
				particles = append(particles, ph)
			}
		}
	}
	groupHandle := m.arena().CreateModelGroup(ModelGroup{Compositor: compositor, Particles: particles})
	return m.arena().CreateParticle(Particle{
		Min: min, Max: max, TermKind: TermModelGroup, Group: groupHandle, Annotation: m.mapAnnotation(n),
	}), nil
}

func (m *mapCtx) mapGroupRefParticle(n node, min int, max OccursBound) (Handle[Particle], error) {
	ref, ok := n.qnameAttr("ref")
	if !ok {
		return Handle[Particle]{}, unresolvedReference(QName{})
	}
	defHandle, err := m.resolveGroupRef(ref)
	if err != nil {
		return Handle[Particle]{}, err
	}
	def := m.arena().GetModelGroupDefinition(defHandle)
	return m.arena().CreateParticle(Particle{
		Min: min, Max: max, TermKind: TermModelGroup, Group: def.ModelGroup,
	}), nil
}

func (m *mapCtx) mapWildcardParticle(n node, min int, max OccursBound) (Handle[Particle], error) {
	wh, err := m.mapWildcard(n)
	if err != nil {
		return Handle[Particle]{}, err
	}
	return m.arena().CreateParticle(Particle{
		Min: min, Max: max, TermKind: TermWildcard, Wildcard: wh,
	}), nil
}

// mapWildcard implements §4.4's namespace-constraint variety table.
func (m *mapCtx) mapWildcard(n node) (Handle[Wildcard], error) {
	w := Wildcard{Annotation: m.mapAnnotation(n)}

	switch n.attrOr("processContents", "strict") {
	case "lax":
		w.ProcessContents = ProcessLax
	case "skip":
		w.ProcessContents = ProcessSkip
	default:
		w.ProcessContents = ProcessStrict
	}

	ns, hasNS := n.attr("namespace")
	notNS, hasNotNS := n.attr("notNamespace")
	target := m.ns().targetNamespace

	switch {
	case !hasNS && !hasNotNS:
		w.Namespace = NamespaceConstraint{Variety: NSAny}
	case hasNS && ns == "##any":
		w.Namespace = NamespaceConstraint{Variety: NSAny}
	case hasNS && ns == "##other":
		w.Namespace = NamespaceConstraint{Variety: NSNot, Namespaces: []string{"", target}}
	case hasNS:
		w.Namespace = NamespaceConstraint{Variety: NSEnumeration, Namespaces: expandNSTokens(ns, target)}
	case hasNotNS:
		w.Namespace = NamespaceConstraint{Variety: NSNot, Namespaces: expandNSTokens(notNS, target)}
	}

	if dn, ok := n.attr("notQName"); ok {
		var disallowed DisallowedNames
		for _, tok := range splitFields(dn) {
			switch tok {
			case "##defined":
				disallowed.Defined = true
			case "##definedSibling":
				disallowed.DefinedSibling = true
			default:
				disallowed.QNames = append(disallowed.QNames, n.resolveQName(tok))
			}
		}
		w.Disallowed = disallowed
	}

	return m.arena().CreateWildcard(w), nil
}

func expandNSTokens(list, target string) []string {
	var out []string
	for _, tok := range splitFields(list) {
		switch tok {
		case "##targetNamespace":
			out = append(out, target)
		case "##local":
			out = append(out, "")
		default:
			out = append(out, tok)
		}
	}
	return out
}

func splitFields(s string) []string {
	return strings.Fields(s)
}
