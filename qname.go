package xsd

import "strings"

// XSDNamespace is the XML Schema namespace, carried over from the teacher's
// schema.go verbatim — every built-in and every unprefixed xs:/xsd: QName
// resolves against it.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// XSINamespace is the instance namespace that carries xsi:type, xsi:nil,
// xsi:schemaLocation and xsi:noNamespaceSchemaLocation (§4.3).
const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

// QName is a qualified name: an optional namespace URI plus a local NCName.
// Equality and hashing are structural, so QName is usable directly as a map
// key in every symbol space (§3).
type QName struct {
	Namespace string // "" means absent (no-namespace)
	Local     string
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// HasNamespace reports whether q carries an explicit namespace URI.
func (q QName) HasNamespace() bool { return q.Namespace != "" }

// xsQName builds a QName in the XML Schema namespace, used throughout the
// built-in registrar (C3).
func xsQName(local string) QName {
	return QName{Namespace: XSDNamespace, Local: local}
}

func xsiQName(local string) QName {
	return QName{Namespace: XSINamespace, Local: local}
}

// splitPrefixed splits "prefix:local" into its two parts; ok is false for an
// unprefixed name.
func splitPrefixed(name string) (prefix, local string, ok bool) {
	i := strings.IndexByte(name, ':')
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}
