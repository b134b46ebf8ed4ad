package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// FormatFromPath picks the format by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal serializes doc.
func Marshal(doc *GraphDocument, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Unmarshal parses a document.
func Unmarshal(data []byte, f Format) (*GraphDocument, error) {
	var doc GraphDocument
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON, "":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", f, err)
	}
	return &doc, nil
}
