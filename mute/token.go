package mute

import "github.com/google/uuid"

// Token is the process-local identity token. Self-issued volume commands are
// tagged with it so the volume callback can tell our own mute landing apart
// from an external change. Generated once at startup, immutable afterwards.
type Token [16]byte

// NewToken returns a fresh random token.
func NewToken() Token {
	return Token(uuid.New())
}

func (t Token) String() string {
	return uuid.UUID(t).String()
}

// IsZero reports whether t is the zero token. Platform backends that cannot
// attribute a change to any originator use the zero token as "not ours".
func (t Token) IsZero() bool {
	return t == Token{}
}
