package card

import "fmt"

// Kind identifies one of the four fruit card kinds.
type Kind uint8

const (
	Apple Kind = iota
	Banana
	Orange
	Mango
)

const (
	// NumKinds is the number of distinct card kinds in a deck
	NumKinds = 4

	// CopiesPerKind is how many copies of each kind a full deck holds
	CopiesPerKind = 4

	// HandSize is the number of cards each player is dealt
	HandSize = 4

	// DeckSize is the total number of cards in a full deck
	DeckSize = NumKinds * CopiesPerKind
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case Apple:
		return "apple"
	case Banana:
		return "banana"
	case Orange:
		return "orange"
	case Mango:
		return "mango"
	default:
		return "unknown"
	}
}

// Emoji returns the display glyph for the kind
func (k Kind) Emoji() string {
	switch k {
	case Apple:
		return "🍎"
	case Banana:
		return "🍌"
	case Orange:
		return "🍊"
	case Mango:
		return "🥭"
	default:
		return "?"
	}
}

// Label returns the emoji-prefixed display name, e.g. "🍎 Apple"
func (k Kind) Label() string {
	switch k {
	case Apple:
		return "🍎 Apple"
	case Banana:
		return "🍌 Banana"
	case Orange:
		return "🍊 Orange"
	case Mango:
		return "🥭 Mango"
	default:
		return "? Unknown"
	}
}

// ParseKind parses a lowercase kind name as produced by String
func ParseKind(s string) (Kind, error) {
	switch s {
	case "apple":
		return Apple, nil
	case "banana":
		return Banana, nil
	case "orange":
		return Orange, nil
	case "mango":
		return Mango, nil
	default:
		return 0, fmt.Errorf("unknown card kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so hands serialize as
// readable names rather than raw integers
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
