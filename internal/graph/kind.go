package graph

import (
	"encoding"
	"fmt"
)

// Kind classifies a knowledge node.
type Kind int

const (
	KindVerse        Kind = iota + 1 // A full verse to memorize.
	KindWord                         // A vocabulary word (type, not occurrence).
	KindWordInstance                 // A specific occurrence of a word in a verse.
	KindChapter                      // A chapter grouping verses.
	KindRoot                         // A morphological root shared by words.
	KindLemma                        // A lemma grouping word instances.
	KindAxis                         // A knowledge axis variant (e.g. translation).
)

var (
	kindNames = [...]string{
		KindVerse:        "verse",
		KindWord:         "word",
		KindWordInstance: "word-instance",
		KindChapter:      "chapter",
		KindRoot:         "root",
		KindLemma:        "lemma",
		KindAxis:         "axis",
	}
	kindByName = map[string]Kind{
		"verse":         KindVerse,
		"word":          KindWord,
		"word-instance": KindWordInstance,
		"chapter":       KindChapter,
		"root":          KindRoot,
		"lemma":         KindLemma,
		"axis":          KindAxis,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Kind(0)
	_ encoding.TextMarshaler   = Kind(0)
	_ encoding.TextUnmarshaler = (*Kind)(nil)
)

// IsValid reports whether k is a known node kind.
func (k Kind) IsValid() bool {
	return k >= KindVerse && k <= KindAxis
}

// String returns the kind name ("verse", "word", ...).
// For invalid values it returns "Kind(n)".
func (k Kind) String() string {
	if k.IsValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("graph: invalid node kind: %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := kindByName[string(text)]
	if !ok {
		return fmt.Errorf("graph: invalid node kind: %q", text)
	}
	*k = v
	return nil
}
