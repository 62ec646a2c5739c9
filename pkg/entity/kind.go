package entity

import "strings"

type kindCode int

const (
	kindOther kindCode = iota
	kindClass
	kindStruct
	kindEnum
	kindProtocol
	kindExtension
	kindGlobalFunction
	kindTypeAlias
)

// Kind classifies an entity. The zero value is Other("").
type Kind struct {
	code  kindCode
	label string
}

var (
	Class          = Kind{code: kindClass}
	Struct         = Kind{code: kindStruct}
	Enum           = Kind{code: kindEnum}
	Protocol       = Kind{code: kindProtocol}
	Extension      = Kind{code: kindExtension}
	GlobalFunction = Kind{code: kindGlobalFunction}
	TypeAlias      = Kind{code: kindTypeAlias}
)

// IndexKinds is the fixed order of the top-level index
var IndexKinds = []Kind{Class, Struct, Enum, Protocol, Extension, GlobalFunction, TypeAlias}

// Other returns the open variant carrying an unrecognised parser label
func Other(label string) Kind {
	return Kind{code: kindOther, label: label}
}

type kindInfo struct {
	name    string
	display string
	typ     string
}

var kindInfos = map[kindCode]kindInfo{
	kindClass:          {"class", "Classes", "Class"},
	kindStruct:         {"struct", "Structs", "Struct"},
	kindEnum:           {"enum", "Enums", "Enum"},
	kindProtocol:       {"protocol", "Protocols", "Protocol"},
	kindExtension:      {"extension", "Extensions", "Extension"},
	kindGlobalFunction: {"global function", "Global Functions", "Function"},
	kindTypeAlias:      {"type alias", "Type Aliases", "Type"},
}

// kindLabels maps both short and SourceKit labels onto the closed set
var kindLabels = map[string]kindCode{
	"class":                                kindClass,
	"struct":                               kindStruct,
	"enum":                                 kindEnum,
	"protocol":                             kindProtocol,
	"extension":                            kindExtension,
	"global function":                      kindGlobalFunction,
	"globalfunction":                       kindGlobalFunction,
	"function":                             kindGlobalFunction,
	"type alias":                           kindTypeAlias,
	"typealias":                            kindTypeAlias,
	"source.lang.swift.decl.class":         kindClass,
	"source.lang.swift.decl.struct":        kindStruct,
	"source.lang.swift.decl.enum":          kindEnum,
	"source.lang.swift.decl.protocol":      kindProtocol,
	"source.lang.swift.decl.extension":     kindExtension,
	"source.lang.swift.decl.function.free": kindGlobalFunction,
	"source.lang.swift.decl.typealias":     kindTypeAlias,
}

var enumCaseLabels = map[string]struct{}{
	"enum case":                       {},
	"enumcase":                        {},
	"source.lang.swift.decl.enumcase": {},
}

// ParseKind maps a parser label onto the closed set, falling back to Other
func ParseKind(label string) Kind {
	key := strings.ToLower(strings.TrimSpace(label))
	if code, ok := kindLabels[key]; ok {
		return Kind{code: code}
	}
	return Other(label)
}

// IsEnumCaseMarker reports whether the label denotes an enum-case grouping record
func IsEnumCaseMarker(label string) bool {
	_, ok := enumCaseLabels[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// IsOther reports whether k is the open variant
func (k Kind) IsOther() bool {
	return k.code == kindOther
}

// Label returns the raw parser label of an Other kind
func (k Kind) Label() string {
	return k.label
}

// IsTypeDeclaration reports whether k can receive extensions
func (k Kind) IsTypeDeclaration() bool {
	switch k.code {
	case kindClass, kindStruct, kindEnum, kindProtocol:
		return true
	}
	return false
}

// String returns the singular label, e.g. "class" or "global function"
func (k Kind) String() string {
	if info, ok := kindInfos[k.code]; ok {
		return info.name
	}
	return k.label
}

// DisplayName returns the plural section label, e.g. "Classes"
func (k Kind) DisplayName() string {
	if info, ok := kindInfos[k.code]; ok {
		return info.display
	}
	return k.label
}

// TypeLabel returns the lookup-index type for the kind
func (k Kind) TypeLabel() string {
	if info, ok := kindInfos[k.code]; ok {
		return info.typ
	}
	return "Entry"
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}
