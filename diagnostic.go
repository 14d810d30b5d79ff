package xsd

import (
	"fmt"
	"strings"
)

// Severity classifies a Diagnostic the way the teacher's rustc-style
// converter does, carried forward onto the new failure taxonomy.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a rustc-style rendering of one ValidationFailure: a short
// code, a human message, and a handful of hints. It carries no source
// position (the validator walks a parsed DOM tree, not a token stream), so
// ElementAt — the breadcrumb path built up during the walk — stands in for
// Position in the teacher's converter.
type Diagnostic struct {
	Severity  Severity
	Code      string
	Message   string
	ElementAt string
	Hints     []string
}

// NewDiagnostics converts a validation run's raw failures into diagnostics,
// one per failure, preserving order.
func NewDiagnostics(failures []ValidationFailure) []Diagnostic {
	out := make([]Diagnostic, 0, len(failures))
	for _, f := range failures {
		out = append(out, convertFailure(f))
	}
	return out
}

func convertFailure(f ValidationFailure) Diagnostic {
	return Diagnostic{
		Severity:  SeverityError,
		Code:      failureCode(f.Kind),
		Message:   f.Reason,
		ElementAt: f.ElementAt,
		Hints:     failureHints(f),
	}
}

func failureCode(k ValidationFailureKind) string {
	codes := map[ValidationFailureKind]string{
		FailureNoMatchingTransition:    "xsd-cvc-complex-type.2.4",
		FailureUnacceptedEnd:           "xsd-cvc-complex-type.2.4.b",
		FailureSimpleTypeMismatch:      "xsd-cvc-type.3.1.3",
		FailureProhibitedAttribute:     "xsd-cvc-complex-type.3.2.1",
		FailureMissingRequiredAttribute: "xsd-cvc-complex-type.4",
		FailureFixedMismatch:           "xsd-cvc-elt.4",
		FailureAbstractElement:         "xsd-cvc-elt.2",
		FailureNilNotAllowed:           "xsd-cvc-elt.3.1",
		FailureUnsupported:             "xsd-unsupported",
		FailureInvalidTypeOverride:     "xsd-cvc-elt.4.3",
	}
	if c, ok := codes[k]; ok {
		return c
	}
	return "xsd-unknown"
}

func failureHints(f ValidationFailure) []string {
	switch f.Kind {
	case FailureNoMatchingTransition:
		return []string{"the content model at this position does not accept this element; check element order and occurrence bounds"}
	case FailureUnacceptedEnd:
		return []string{"one or more required child elements are missing before the end tag"}
	case FailureMissingRequiredAttribute:
		return []string{"a `use=\"required\"` attribute was not supplied"}
	case FailureAbstractElement:
		return []string{"an abstract element declaration cannot be used directly in an instance; use a member of its substitution group"}
	case FailureNilNotAllowed:
		return []string{"xsi:nil requires the element declaration to set nillable=\"true\""}
	case FailureProhibitedAttribute:
		return []string{"a `use=\"prohibited\"` attribute was supplied on the instance element"}
	case FailureFixedMismatch:
		return []string{"the supplied value does not match the fixed value constraint"}
	case FailureInvalidTypeOverride:
		return []string{"xsi:type must resolve to a known type definition derived from the element's declared type"}
	default:
		return nil
	}
}

// Format renders a diagnostic the way the teacher's ErrorFormatter does,
// minus source-line context (no source positions are tracked here).
func (d Diagnostic) Format() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s[%s]: %s\n", d.Severity, d.Code, d.Message))
	sb.WriteString(fmt.Sprintf("  --> %s\n", d.ElementAt))
	for _, h := range d.Hints {
		sb.WriteString("  = help: " + h + "\n")
	}
	return sb.String()
}
