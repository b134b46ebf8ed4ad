package codec

import (
	"reflect"
)

// DocumentDiff represents the changes between two graph documents.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	// Nodes contains only added or changed nodes, by ID.
	// For deletions, the ID is present with a nil value.
	// Clients should merge these updates into their local copy.
	Nodes map[string]*NodeDocument `json:"nodes,omitempty"`

	// Order is the new node order when it changed.
	Order []string `json:"order,omitempty"`
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, it returns a diff representing the entire newDoc.
// It returns nil when nothing changed.
func Diff(oldDoc, newDoc *GraphDocument) *DocumentDiff {
	if newDoc == nil {
		return nil
	}
	if oldDoc == nil {
		oldDoc = &GraphDocument{}
	}

	diff := &DocumentDiff{}
	if oldDoc.Name != newDoc.Name {
		diff.Name = &newDoc.Name
	}
	if oldDoc.Description != newDoc.Description {
		diff.Description = &newDoc.Description
	}
	diff.Nodes = diffNodes(oldDoc.Nodes, newDoc.Nodes)

	oldOrder, newOrder := nodeIDs(oldDoc.Nodes), nodeIDs(newDoc.Nodes)
	if !reflect.DeepEqual(oldOrder, newOrder) {
		diff.Order = newOrder
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffNodes(old, new []NodeDocument) map[string]*NodeDocument {
	delta := make(map[string]*NodeDocument)

	before := make(map[string]*NodeDocument, len(old))
	for i := range old {
		before[old[i].ID] = &old[i]
	}

	// Added or modified
	for i := range new {
		nd := &new[i]
		prev, exists := before[nd.ID]
		if !exists || !reflect.DeepEqual(prev, nd) {
			delta[nd.ID] = nd
		}
		delete(before, nd.ID)
	}

	// Whatever is left was deleted
	for id := range before {
		delta[id] = nil
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func nodeIDs(nodes []NodeDocument) []string {
	ids := make([]string, len(nodes))
	for i, nd := range nodes {
		ids[i] = nd.ID
	}
	return ids
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DocumentDiff) IsEmpty() bool {
	return d.Name == nil &&
		d.Description == nil &&
		len(d.Nodes) == 0 &&
		d.Order == nil
}
