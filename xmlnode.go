package xsd

import (
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// node wraps an xmldom.Element with the small set of XSD-schema-specific
// helpers every C4 mapper needs — attribute access, XS-namespace child
// filtering, and occurs parsing. Grounded on the teacher's schema.go parse*
// functions, which repeat this same boilerplate inline per mapper; here it
// is factored out once since the new mappers are written from scratch.
type node struct {
	elem xmldom.Element
	ns   *nsContext
}

// nsContext carries the in-scope namespace bindings and defaults needed to
// resolve a QName attribute value (§4.4's "name/type/base/ref" handling).
// targetNamespace is the owning <schema>'s target namespace, consulted when
// a local declaration's form is "qualified" or elementFormDefault applies.
type nsContext struct {
	targetNamespace    string
	prefixes           map[string]string // prefix -> namespace URI, as declared on the root <schema> element
	elementFormDefault string            // "qualified" | "unqualified"
	attributeFormDefault string
}

func newNode(e xmldom.Element, ns *nsContext) node { return node{elem: e, ns: ns} }

func (n node) attr(name string) (string, bool) {
	v := string(n.elem.GetAttribute(xmldom.DOMString(name)))
	return v, v != ""
}

func (n node) attrOr(name, def string) string {
	if v, ok := n.attr(name); ok {
		return v
	}
	return def
}

func (n node) boolAttr(name string) bool {
	v, ok := n.attr(name)
	return ok && v == "true"
}

// localName/namespaceURI of the wrapped element itself.
func (n node) localName() string     { return string(n.elem.LocalName()) }
func (n node) namespaceURI() string  { return string(n.elem.NamespaceURI()) }

// children returns every direct child element in the XML Schema namespace,
// in document order — the teacher's repeated "children := elem.Children();
// for i ...; if ns != XSDNamespace { continue }" loop, factored once.
func (n node) children() []node {
	var out []node
	cs := n.elem.Children()
	for i := uint(0); i < cs.Length(); i++ {
		c := cs.Item(i)
		if c == nil || string(c.NamespaceURI()) != XSDNamespace {
			continue
		}
		out = append(out, newNode(c, n.ns))
	}
	return out
}

// childrenNamed filters children() to one local name.
func (n node) childrenNamed(local string) []node {
	var out []node
	for _, c := range n.children() {
		if c.localName() == local {
			out = append(out, c)
		}
	}
	return out
}

func (n node) firstChildNamed(local string) (node, bool) {
	cs := n.childrenNamed(local)
	if len(cs) == 0 {
		return node{}, false
	}
	return cs[0], true
}

// text returns the element's text content, used for <appinfo>/
// <documentation> serialization (§4.4 annotation mapping).
func (n node) text() string {
	return string(n.elem.TextContent())
}

// occurs parses minOccurs/maxOccurs per the normative defaults (1 and 1);
// "unbounded" maps to OccursBound.Unbounded.
func (n node) minOccurs() int {
	v, ok := n.attr("minOccurs")
	if !ok {
		return 1
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 1
	}
	return i
}

func (n node) maxOccurs() OccursBound {
	v, ok := n.attr("maxOccurs")
	if !ok {
		return boundedMax(1)
	}
	if v == "unbounded" {
		return unboundedMax()
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return boundedMax(1)
	}
	return boundedMax(i)
}

// resolveQName resolves a prefixed or unprefixed QName-valued attribute against
// the node's in-scope namespace bindings. An unprefixed name in a QName-
// valued attribute (type="string") resolves against the *default*
// namespace, not the element form default (distinct from element/attribute
// name computation).
func (n node) resolveQName(value string) QName {
	if prefix, local, ok := splitPrefixed(value); ok {
		return QName{Namespace: n.ns.prefixes[prefix], Local: local}
	}
	return QName{Namespace: n.ns.prefixes[""], Local: value}
}

// qnameAttr resolves a QName-valued attribute, returning ok=false if absent.
func (n node) qnameAttr(name string) (QName, bool) {
	v, ok := n.attr(name)
	if !ok {
		return QName{}, false
	}
	return n.resolveQName(v), true
}

// qnameListAttr splits a whitespace-separated list of QNames (memberTypes,
// substitutionGroup exclusions' sibling lists, etc.).
func (n node) qnameListAttr(name string) []QName {
	v, ok := n.attr(name)
	if !ok {
		return nil
	}
	var out []QName
	for _, tok := range strings.Fields(v) {
		out = append(out, n.resolveQName(tok))
	}
	return out
}

// declaredName computes a top-level component's own QName: its target
// namespace is always the owning schema's, regardless of form defaults
// (those only affect local declarations, §4.4).
func (n node) declaredName() (QName, bool) {
	local, ok := n.attr("name")
	if !ok {
		return QName{}, false
	}
	return QName{Namespace: n.ns.targetNamespace, Local: local}, true
}

// localElementName computes a local element/attribute declaration's name,
// applying form/elementFormDefault per §4.4's block/final table sibling
// rule: "unqualified local -> absent namespace".
func (n node) localElementName(formDefault string) (QName, bool) {
	local, ok := n.attr("name")
	if !ok {
		return QName{}, false
	}
	form := n.attrOr("form", formDefault)
	if form == "qualified" {
		return QName{Namespace: n.ns.targetNamespace, Local: local}, true
	}
	return QName{Local: local}, true
}

// parseDerivationBlock parses a block/final-shaped attribute per §4.4's table:
// absent falls back to the supplied default; "#all" sets every bit (minus
// Substitution, which only block carries); otherwise a token list.
func parseDerivationBlock(value string, present bool, fallback DerivationBlock, allowSubstitution bool) DerivationBlock {
	if !present {
		return fallback
	}
	if strings.TrimSpace(value) == "#all" {
		return DerivationBlock{Extension: true, Restriction: true, Substitution: allowSubstitution}
	}
	var b DerivationBlock
	for _, tok := range strings.Fields(value) {
		switch tok {
		case "extension":
			b.Extension = true
		case "restriction":
			b.Restriction = true
		case "substitution":
			if allowSubstitution {
				b.Substitution = true
			}
		}
	}
	return b
}
