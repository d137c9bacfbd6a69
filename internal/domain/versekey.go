package domain

import (
	"strconv"
	"strings"
)

// Surah numbers run 1..114; ayah numbers start at 1.
const maxSurah = 114

// VerseKey addresses a single verse as a surah:ayah pair.
type VerseKey struct {
	Surah int
	Ayah  int
}

// ParseVerseKey parses a raw "surah:ayah" key. It returns the zero key
// when either component does not parse as an integer.
func ParseVerseKey(raw string) VerseKey {
	left, right, found := strings.Cut(raw, ":")
	if !found {
		return VerseKey{}
	}
	surah, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return VerseKey{}
	}
	ayah, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return VerseKey{}
	}
	return VerseKey{Surah: surah, Ayah: ayah}
}

// Valid reports whether the key addresses a real verse.
func (k VerseKey) Valid() bool {
	return k.Surah >= 1 && k.Surah <= maxSurah && k.Ayah >= 1
}

// String renders the canonical "surah:ayah" form.
func (k VerseKey) String() string {
	return strconv.Itoa(k.Surah) + ":" + strconv.Itoa(k.Ayah)
}

// ValidVerseKey reports whether a raw key parses into a valid verse key.
func ValidVerseKey(raw string) bool {
	return ParseVerseKey(raw).Valid()
}
