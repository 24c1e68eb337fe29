package token

import "strings"

// Kind is the wire shape of a raw credential.
type Kind int

const (
	// Unrecognized is neither a structured token nor a decodable unified token.
	// It is still handed to structured verification, which rejects it.
	Unrecognized Kind = iota
	// Structured is a three-segment signed token.
	Structured
	// Unified is a base64 JSON token with all required fields.
	Unified
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	case Unified:
		return "unified"
	default:
		return "unrecognized"
	}
}

// Classified is the result of Classify. Payload is set only for Unified.
type Classified struct {
	Kind    Kind
	Raw     string
	Payload *UnifiedPayload
}

// Classify dispatches on the shape of raw alone. A string with exactly three
// dot-separated segments is always Structured, even if it would also decode as
// a unified token.
func Classify(raw string) Classified {
	if strings.Count(raw, ".") == 2 {
		return Classified{Kind: Structured, Raw: raw}
	}

	if p, ok := decodeUnified(raw); ok {
		return Classified{Kind: Unified, Raw: raw, Payload: p}
	}

	return Classified{Kind: Unrecognized, Raw: raw}
}
