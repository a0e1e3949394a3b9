// Package entityid validates and parses the TYPE:ID entity identifier
// format shared by CANON facts, GENESIS canon_read_scope entries, and
// continuity claims (spec.md §3, §4.5).
package entityid

import (
	"regexp"
	"strings"

	"omega/internal/omegaerr"
)

// identifierPattern matches spec.md §6's entity identifier grammar:
// 1-64 characters, alphanumeric with internal underscores only (no
// leading or trailing underscore).
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9_]{0,62}[A-Za-z0-9])?$`)

// ValidTypes enumerates the entity type prefixes spec.md §3 allows.
var ValidTypes = map[string]bool{
	"CHAR":  true,
	"LOC":   true,
	"OBJ":   true,
	"EVT":   true,
	"FAC":   true,
	"TL":    true,
	"CON":   true,
	"VOICE": true,
	"SAGA":  true,
}

// Validate reports whether id has the form TYPE:ID with TYPE one of the
// recognized entity types and ID non-empty.
func Validate(id string) error {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return omegaerr.Newf(omegaerr.CodeCanonInvalidEntityID, "entity id %q must have the form TYPE:ID", id)
	}
	typ, ident := parts[0], parts[1]
	if !ValidTypes[typ] {
		return omegaerr.Newf(omegaerr.CodeCanonInvalidEntityID, "entity id %q has unknown type %q", id, typ)
	}
	if !identifierPattern.MatchString(ident) {
		return omegaerr.Newf(omegaerr.CodeCanonInvalidEntityID, "entity id %q has a malformed identifier %q", id, ident)
	}
	return nil
}

// Type returns the TYPE portion of id ("" if id is malformed).
func Type(id string) string {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[0]
}

// Severity is a continuity-claim severity level (spec.md §4.5).
type Severity string

const (
	SeverityP0Critical Severity = "P0Critical"
	SeverityP1High     Severity = "P1High"
	SeverityP2Medium   Severity = "P2Medium"
	SeverityP3Low      Severity = "P3Low"
)

// ParseSeverity parses s into a Severity, failing on anything other than
// the four recognized values.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityP0Critical, SeverityP1High, SeverityP2Medium, SeverityP3Low:
		return Severity(s), nil
	default:
		return "", omegaerr.Newf(omegaerr.CodeGenesisSeverityInvalid, "unrecognized severity %q", s)
	}
}
