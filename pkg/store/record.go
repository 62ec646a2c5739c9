package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyPayload is returned when the parser payload has no content
var ErrEmptyPayload = errors.New("empty parser payload")

const attributePrefix = "source.decl.attribute."

// Record is one entity record as emitted by the external parser
type Record struct {
	Kind              string     `json:"key.kind"`
	Name              string     `json:"key.name,omitempty"`
	Accessibility     string     `json:"key.accessibility,omitempty"`
	DocComment        string     `json:"key.doc.comment,omitempty"`
	Attributes        Attributes `json:"key.attributes,omitempty"`
	DocDeclaration    string     `json:"key.doc.declaration,omitempty"`
	ParsedDeclaration string     `json:"key.parsed_declaration,omitempty"`
	Substructure      []Record   `json:"key.substructure,omitempty"`
}

// Attributes holds normalised attribute labels. It decodes from a list of
// strings or a list of {"key.attribute": "..."} objects.
type Attributes []string

// UnmarshalJSON implements json.Unmarshaler
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid attributes: %w", err)
	}

	out := make(Attributes, 0, len(raw))
	for _, item := range raw {
		var label string
		if err := json.Unmarshal(item, &label); err != nil {
			var obj struct {
				Attribute string `json:"key.attribute"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return fmt.Errorf("invalid attribute %s: %w", item, err)
			}
			label = obj.Attribute
		}
		if label = normalizeAttribute(label); label != "" {
			out = append(out, label)
		}
	}
	*a = out
	return nil
}

func normalizeAttribute(label string) string {
	return strings.TrimPrefix(strings.TrimSpace(label), attributePrefix)
}

// Payload maps a source file path to its top-level records
type Payload map[string][]Record

// sourceFile is one element of the array form produced by SourceKitten
type sourceFile struct {
	Substructure []Record `json:"key.substructure"`
}

// DecodePayload reads a parser payload. Both the path-to-records map and the
// SourceKitten array of {"<path>": {"key.substructure": [...]}} objects are
// accepted.
func DecodePayload(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	switch data[0] {
	case '{':
		var p Payload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
		return p, nil
	case '[':
		var files []map[string]sourceFile
		if err := json.Unmarshal(data, &files); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
		p := make(Payload)
		for _, file := range files {
			for path, sf := range file {
				p[path] = append(p[path], sf.Substructure...)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("failed to decode payload: unexpected %q", data[0])
	}
}
