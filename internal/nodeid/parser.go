// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single identifier segment, e.g. `add_1` or `flow-out`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	if name == "-" || name == "_" {
		return false
	}
	return true
}

// ValidateSegment checks that a raw string can be used as a node or port id.
func ValidateSegment(raw string) error {
	if raw == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !segmentRegex.MatchString(raw) {
		return fmt.Errorf("invalid identifier format: %q", raw)
	}
	if !isValidSegmentName(raw) {
		return fmt.Errorf("invalid identifier name: %q", raw)
	}
	return nil
}

// Parse creates a PortKey by parsing its canonical `node.port` representation.
func Parse(rawKey string) (PortKey, error) {
	if rawKey == "" {
		return PortKey{}, fmt.Errorf("port key cannot be empty")
	}

	parts := strings.Split(rawKey, ".")
	if len(parts) != 2 {
		return PortKey{}, fmt.Errorf("port key must have the form node.port, got %q", rawKey)
	}
	for _, part := range parts {
		if part == "" {
			return PortKey{}, fmt.Errorf("port key contains empty segment: %q", rawKey)
		}
		if err := ValidateSegment(part); err != nil {
			return PortKey{}, err
		}
	}

	return PortKey{Node: ID(parts[0]), Port: PortID(parts[1])}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and statically known keys.
func MustParse(rawKey string) PortKey {
	k, err := Parse(rawKey)
	if err != nil {
		panic(err)
	}
	return k
}
