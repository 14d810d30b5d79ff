package xsd

import (
	"log/slog"

	"github.com/agentflare-ai/go-xmldom"
)

// ValidationFailureKind is the §4.7 failure taxonomy. Every failure is
// non-fatal to the run (validation continues) but fatal to the verdict.
type ValidationFailureKind uint8

const (
	FailureNoMatchingTransition ValidationFailureKind = iota
	FailureUnacceptedEnd
	FailureSimpleTypeMismatch
	FailureProhibitedAttribute
	FailureMissingRequiredAttribute
	FailureFixedMismatch
	FailureAbstractElement
	FailureNilNotAllowed
	FailureUnsupported
	FailureInvalidTypeOverride
)

func (k ValidationFailureKind) String() string {
	switch k {
	case FailureNoMatchingTransition:
		return "NoMatchingTransition"
	case FailureUnacceptedEnd:
		return "UnacceptedEnd"
	case FailureSimpleTypeMismatch:
		return "SimpleTypeMismatch"
	case FailureProhibitedAttribute:
		return "ProhibitedAttribute"
	case FailureMissingRequiredAttribute:
		return "MissingRequiredAttribute"
	case FailureFixedMismatch:
		return "FixedMismatch"
	case FailureAbstractElement:
		return "AbstractElement"
	case FailureNilNotAllowed:
		return "NilNotAllowed"
	case FailureUnsupported:
		return "Unsupported"
	case FailureInvalidTypeOverride:
		return "InvalidTypeOverride"
	default:
		return "Unknown"
	}
}

// ValidationFailure is one diagnostic emitted by the validator. ElementAt
// is a breadcrumb path of local names (e.g. "/Pair/a") for human-facing
// reports; sibling positions are not included.
type ValidationFailure struct {
	Kind       ValidationFailureKind
	ElementAt  string
	Reason     string
}

// frame is one entry of the validator's evaluation stack (§4.7).
type frame struct {
	elementAt string
	decl      Handle[ElementDeclaration]
	typeRef   TypeRef
	automaton *automaton
	state     int
	sawChild  bool
	text      string

	// prefixes is this element's in-scope xmlns bindings (its ancestors'
	// bindings overlaid with its own), used to resolve xsi:type's QName.
	prefixes map[string]string
}

// Validator drives a pull-style instance walk against a built Schema.
// StringValid is the injected "String Valid" seam (§9): nil disables
// lexical/facet checking and simple-content frames are accepted unchecked.
type Validator struct {
	schema      *Schema
	StringValid func(lexical string, simpleType Handle[SimpleTypeDefinition]) bool
	Assert      AssertionEvaluator
	log         *slog.Logger

	failures []ValidationFailure
	stack    []*frame
}

func NewValidator(schema *Schema) *Validator {
	return &Validator{schema: schema, log: slog.Default()}
}

// Failures returns every diagnostic collected so far.
func (v *Validator) Failures() []ValidationFailure { return v.failures }

// Valid reports whether the run so far produced zero failures.
func (v *Validator) Valid() bool { return len(v.failures) == 0 }

func (v *Validator) fail(kind ValidationFailureKind, at, reason string) {
	v.failures = append(v.failures, ValidationFailure{Kind: kind, ElementAt: at, Reason: reason})
}

// ValidateDocument walks an entire parsed instance document from its root
// element, matching the teacher's schema_validator.go entry-point shape.
func (v *Validator) ValidateDocument(doc xmldom.Document) error {
	root := doc.DocumentElement()
	if root == nil {
		v.fail(FailureNoMatchingTransition, "/", "document has no root element")
		return nil
	}
	v.visitElement(root, "/"+string(root.LocalName()))
	v.log.Info("validation complete", "failures", len(v.failures))
	observeValidation(v)
	return nil
}

// visitElement implements §4.7's element-start/element-end pair for one
// subtree, recursing into children between the two.
func (v *Validator) visitElement(elem xmldom.Element, at string) {
	qn := QName{Namespace: string(elem.NamespaceURI()), Local: string(elem.LocalName())}

	var decl Handle[ElementDeclaration]
	var typeRef TypeRef

	if len(v.stack) == 0 {
		h, ok := v.schema.Elements[qn]
		if !ok {
			v.fail(FailureNoMatchingTransition, at, "no root element declaration for "+qn.String())
			return
		}
		decl = h
		typeRef = v.schema.Arena.ElementDeclaration(h).TypeDefinition
	} else {
		top := v.stack[len(v.stack)-1]
		if top.automaton == nil {
			v.fail(FailureNoMatchingTransition, at, "element content not expected here")
			return
		}
		next, matched := v.transition(top.automaton, top.state, qn)
		if !matched {
			v.fail(FailureNoMatchingTransition, at, "no transition for "+qn.String())
			return
		}
		decl, typeRef = v.resolveChildDeclaration(top.automaton, top.state, qn)
		top.state = next
		top.sawChild = true
	}

	var parentPrefixes map[string]string
	if len(v.stack) > 0 {
		parentPrefixes = v.stack[len(v.stack)-1].prefixes
	}

	f := &frame{
		elementAt: at,
		decl:      decl,
		typeRef:   typeRef,
		text:      string(elem.TextContent()),
		prefixes:  instancePrefixes(elem, parentPrefixes),
	}
	v.checkElementLocallyValid(elem, f)

	// f.typeRef may have been replaced by a compatible xsi:type override in
	// checkElementLocallyValid; the content-model/String-Valid checks that
	// follow must use whichever type now governs this element.
	if f.typeRef.IsComplex() {
		ct := v.schema.Arena.ComplexTypeDefinition(f.typeRef.Complex)
		if ct.Content.Variety == ContentElementOnly || ct.Content.Variety == ContentMixed {
			f.automaton = v.schema.Automaton(f.typeRef.Complex)
			if f.automaton != nil {
				f.state = f.automaton.start
			}
		}
	}

	v.stack = append(v.stack, f)

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		c := children.Item(i)
		if c == nil {
			continue
		}
		v.visitElement(c, at+"/"+string(c.LocalName()))
	}

	v.stack = v.stack[:len(v.stack)-1]
	v.checkElementEnd(f)
}

func (v *Validator) transition(a *automaton, state int, qn QName) (int, bool) {
	for _, t := range a.states[state].transitions {
		if !t.label.isWildcard && t.label.element == qn {
			return t.to, true
		}
	}
	for _, t := range a.states[state].transitions {
		if t.label.isWildcard && namespaceInWildcard(v.schema.Arena.Wildcard(t.label.wildcard), qn.Namespace) {
			return t.to, true
		}
	}
	return 0, false
}

// resolveChildDeclaration looks up the matched transition's element handle
// (or, for a wildcard match, falls back to the global element declaration
// for qn if one exists).
func (v *Validator) resolveChildDeclaration(a *automaton, state int, qn QName) (Handle[ElementDeclaration], TypeRef) {
	for _, t := range a.states[state].transitions {
		if !t.label.isWildcard && t.label.element == qn {
			h := t.label.elementDecl
			return h, v.schema.Arena.ElementDeclaration(h).TypeDefinition
		}
	}
	if h, ok := v.schema.Elements[qn]; ok {
		return h, v.schema.Arena.ElementDeclaration(h).TypeDefinition
	}
	return Handle[ElementDeclaration]{}, TypeRef{}
}

// checkElementLocallyValid implements the normative (Element) checks:
// abstract, nillable (including xsi:nil against a fixed value constraint),
// xsi:type override, attribute uses (§4.7). The element's own fixed/default
// value constraint is not compared with its text. Assertions and identity
// constraints remain out of scope (§9).
func (v *Validator) checkElementLocallyValid(elem xmldom.Element, f *frame) {
	if f.decl.IsZero() {
		return
	}
	decl := v.schema.Arena.ElementDeclaration(f.decl)
	if decl.Abstract {
		v.fail(FailureAbstractElement, f.elementAt, "element declaration is abstract")
	}

	nilAttr := string(elem.GetAttribute(xmldom.DOMString("nil")))
	if nilAttr == "true" {
		if !decl.Nillable {
			v.fail(FailureNilNotAllowed, f.elementAt, "xsi:nil on non-nillable element")
		} else if decl.ValueConstraint.Variety == FixedValueConstraint {
			v.fail(FailureNilNotAllowed, f.elementAt, "xsi:nil=true with a fixed value constraint")
		}
	}

	if xt := string(elem.GetAttribute(xmldom.DOMString("type"))); xt != "" {
		// xsi:type "overrides" the declared type (§4.7): resolve its QName
		// against this element's own in-scope namespaces, then accept it
		// only if it is derivation-compatible with the declared type. Once
		// accepted it replaces f.typeRef for the rest of this frame.
		qn, ok := resolveInstanceQName(xt, f.prefixes)
		switch {
		case !ok:
			v.fail(FailureInvalidTypeOverride, f.elementAt, "xsi:type value \""+xt+"\" has an unbound namespace prefix")
		default:
			if override, known := v.schema.Types[qn]; !known {
				v.fail(FailureInvalidTypeOverride, f.elementAt, "xsi:type references unknown type "+qn.String())
			} else if !v.typeCompatible(override, f.typeRef) {
				v.fail(FailureInvalidTypeOverride, f.elementAt, "xsi:type "+qn.String()+" is not derived from the declared type")
			} else {
				f.typeRef = override
			}
		}
	}

	if f.typeRef.IsComplex() {
		v.checkAttributeUses(elem, f, v.schema.Arena.ComplexTypeDefinition(f.typeRef.Complex))
	}
}

// checkAttributeUses implements the §4.7 (Complex Type) attribute checks:
// every required use must be present, every prohibited use absent, and a
// present attribute's lexical value must match its fixed value constraint
// (the use's own constraint, falling back to its declaration's).
func (v *Validator) checkAttributeUses(elem xmldom.Element, f *frame, ct ComplexTypeDefinition) {
	for _, uh := range ct.AttributeUses {
		use := v.schema.Arena.AttributeUse(uh)
		attr := v.schema.Arena.AttributeDeclaration(use.Declaration)
		value := string(elem.GetAttribute(xmldom.DOMString(attr.Name.Local)))
		present := value != ""

		if use.Prohibited {
			if present {
				v.fail(FailureProhibitedAttribute, f.elementAt, "attribute "+attr.Name.Local+" is prohibited")
			}
			continue
		}
		if use.Required && !present {
			v.fail(FailureMissingRequiredAttribute, f.elementAt, "required attribute "+attr.Name.Local+" is missing")
			continue
		}

		constraint := use.ValueConstraint
		if constraint.Variety == NoValueConstraint {
			constraint = attr.ValueConstraint
		}
		if present && constraint.Variety == FixedValueConstraint && value != constraint.Lexical {
			v.fail(FailureFixedMismatch, f.elementAt, "attribute "+attr.Name.Local+" = \""+value+"\" does not match fixed value \""+constraint.Lexical+"\"")
		}
	}
}

// typeCompatible reports whether candidate is want, or is derived from want
// through some chain of extension/restriction — the §4.7 xsi:type
// derivation-compatibility check. The walk terminates at anyType/
// anySimpleType, the root of each derivation tree.
func (v *Validator) typeCompatible(candidate, want TypeRef) bool {
	cur := candidate
	for i := 0; i < 128; i++ {
		if cur == want {
			return true
		}
		switch {
		case cur.IsComplex():
			ct := v.schema.Arena.ComplexTypeDefinition(cur.Complex)
			if ct.BaseType.IsComplex() && ct.BaseType.Complex == cur.Complex {
				return false
			}
			cur = ct.BaseType
		case cur.IsSimple():
			st := v.schema.Arena.SimpleTypeDefinition(cur.Simple)
			if st.Base.IsZero() {
				return false
			}
			cur = SimpleTypeRef(st.Base)
		default:
			return false
		}
	}
	return false
}

func (v *Validator) checkElementEnd(f *frame) {
	if f.automaton != nil {
		if !f.automaton.accepts[f.state] {
			v.fail(FailureUnacceptedEnd, f.elementAt, "content model not in an accepting state at element end")
		}
		return
	}
	if v.StringValid == nil {
		return
	}
	if f.typeRef.IsSimple() {
		if !v.StringValid(f.text, f.typeRef.Simple) {
			v.fail(FailureSimpleTypeMismatch, f.elementAt, "text content failed String Valid")
		}
		return
	}
	if f.typeRef.IsComplex() {
		ct := v.schema.Arena.ComplexTypeDefinition(f.typeRef.Complex)
		if ct.Content.Variety == ContentSimple {
			if !v.StringValid(f.text, ct.Content.SimpleType) {
				v.fail(FailureSimpleTypeMismatch, f.elementAt, "simple content failed String Valid")
			}
		}
	}
}

// instancePrefixes resolves an instance element's in-scope xmlns bindings by
// overlaying its own xmlns/xmlns:* attributes, if any, on its parent's
// scope. Distinct from xmlnode.go's nsContext, which only ever resolves
// schema documents' (build-time, root-declared) prefixes.
func instancePrefixes(elem xmldom.Element, parent map[string]string) map[string]string {
	attrs := elem.Attributes()
	var own map[string]string
	for i := uint(0); i < attrs.Length(); i++ {
		n := attrs.Item(i)
		if n == nil {
			continue
		}
		a, ok := n.(xmldom.Attr)
		if !ok {
			continue
		}
		name := string(a.NodeName())
		switch {
		case name == "xmlns":
			if own == nil {
				own = map[string]string{}
			}
			own[""] = string(a.NodeValue())
		case len(name) > 6 && name[:6] == "xmlns:":
			if own == nil {
				own = map[string]string{}
			}
			own[name[6:]] = string(a.NodeValue())
		}
	}
	if own == nil {
		return parent
	}
	out := make(map[string]string, len(parent)+len(own))
	for k, p := range parent {
		out[k] = p
	}
	for k, p := range own {
		out[k] = p
	}
	return out
}

// resolveInstanceQName resolves a possibly-prefixed QName-valued attribute
// (e.g. xsi:type) against an instance element's in-scope xmlns bindings.
func resolveInstanceQName(value string, prefixes map[string]string) (QName, bool) {
	if prefix, local, ok := splitPrefixed(value); ok {
		ns, bound := prefixes[prefix]
		if !bound {
			return QName{}, false
		}
		return QName{Namespace: ns, Local: local}, true
	}
	return QName{Namespace: prefixes[""], Local: value}, true
}
