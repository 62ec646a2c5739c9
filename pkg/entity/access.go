package entity

import (
	"fmt"
	"strings"
)

// AccessLevel is a declaration's visibility
type AccessLevel int

const (
	Private AccessLevel = iota
	FilePrivate
	Internal
	Public
	Open
)

// accessLabelPrefix is the prefix SourceKit puts in front of accessibility labels
const accessLabelPrefix = "source.lang.swift.accessibility."

var accessNames = []string{"private", "fileprivate", "internal", "public", "open"}

// AccessLevels lists every level from lowest to highest
var AccessLevels = []AccessLevel{Private, FilePrivate, Internal, Public, Open}

func (a AccessLevel) String() string {
	if a < Private || a > Open {
		return fmt.Sprintf("AccessLevel(%d)", int(a))
	}
	return accessNames[a]
}

// Visible reports whether an item at this level passes the threshold
func (a AccessLevel) Visible(threshold AccessLevel) bool {
	return a >= threshold
}

// Valid reports whether a is one of the known levels
func (a AccessLevel) Valid() bool {
	return a >= Private && a <= Open
}

// ParseAccessLevel resolves a bare ("public") or SourceKit
// ("source.lang.swift.accessibility.public") label.
func ParseAccessLevel(label string) (AccessLevel, bool) {
	name := strings.ToLower(strings.TrimSpace(label))
	name = strings.TrimPrefix(name, accessLabelPrefix)
	for i, n := range accessNames {
		if n == name {
			return AccessLevel(i), true
		}
	}
	return Private, false
}

// MarshalText implements encoding.TextMarshaler
func (a AccessLevel) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid access level %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *AccessLevel) UnmarshalText(text []byte) error {
	level, ok := ParseAccessLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown access level %q", string(text))
	}
	*a = level
	return nil
}
