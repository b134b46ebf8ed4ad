package loam

import (
	"strings"

	"github.com/aretw0/portgraph/pkg/codec"
)

// GraphMetadata represents the header/metadata of a graph document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys. The
// document body, if any, becomes the graph description.
type GraphMetadata struct {
	ID      string               `json:"id" mapstructure:"id"`
	Version int                  `json:"version" mapstructure:"version"`
	Name    string               `json:"name" mapstructure:"name"`
	Nodes   []codec.NodeDocument `json:"nodes" mapstructure:"nodes"`

	// Description overrides the document body.
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// Document builds the codec form of a loam document.
func (m GraphMetadata) Document(id, content string) *codec.GraphDocument {
	doc := &codec.GraphDocument{
		Version:     m.Version,
		Name:        m.Name,
		Description: m.Description,
		Nodes:       m.Nodes,
	}
	if doc.Version == 0 {
		doc.Version = codec.CurrentVersion
	}
	if doc.Name == "" {
		doc.Name = id
	}
	if doc.Description == "" {
		doc.Description = strings.TrimSpace(content)
	}
	return doc
}
