package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
)

func sampleDoc() *GraphDocument {
	return &GraphDocument{
		Version: CurrentVersion,
		Name:    "g",
		Nodes: []NodeDocument{
			{ID: "a", Type: "MathNode", State: map[string]any{"a": 1.0}},
			{ID: "b", Type: "DisplayValue"},
		},
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name    string
		old     *GraphDocument
		new     func() *GraphDocument
		nodes   map[string]bool // ID -> present (false means deleted)
		order   bool
		renamed bool
	}{
		{
			name:    "Initial Load (Old is Nil)",
			old:     nil,
			new:     sampleDoc,
			nodes:   map[string]bool{"a": true, "b": true},
			order:   true,
			renamed: true,
		},
		{
			name: "No Changes",
			old:  sampleDoc(),
			new:  sampleDoc,
		},
		{
			name: "State Change",
			old:  sampleDoc(),
			new: func() *GraphDocument {
				d := sampleDoc()
				d.Nodes[0].State["a"] = 2.0
				return d
			},
			nodes: map[string]bool{"a": true},
		},
		{
			name: "Moved Node",
			old:  sampleDoc(),
			new: func() *GraphDocument {
				d := sampleDoc()
				d.Nodes[1].Position = domain.Vec2{X: 5}
				return d
			},
			nodes: map[string]bool{"b": true},
		},
		{
			name: "Removed And Renamed",
			old:  sampleDoc(),
			new: func() *GraphDocument {
				d := sampleDoc()
				d.Name = "renamed"
				d.Nodes = d.Nodes[:1]
				return d
			},
			nodes:   map[string]bool{"b": false},
			order:   true,
			renamed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new())
			if tt.nodes == nil && !tt.order && !tt.renamed {
				if got != nil {
					t.Fatalf("expected no diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a diff, got nil")
			}
			if len(got.Nodes) != len(tt.nodes) {
				t.Errorf("expected %d node changes, got %d", len(tt.nodes), len(got.Nodes))
			}
			for id, present := range tt.nodes {
				nd, ok := got.Nodes[id]
				if !ok {
					t.Errorf("missing change for %s", id)
					continue
				}
				if present != (nd != nil) {
					t.Errorf("node %s: expected present=%v", id, present)
				}
			}
			if tt.order != (got.Order != nil) {
				t.Errorf("expected order change=%v, got %v", tt.order, got.Order)
			}
			if tt.renamed != (got.Name != nil) {
				t.Errorf("expected rename=%v", tt.renamed)
			}
		})
	}
}

func TestDiffSerialization(t *testing.T) {
	old := sampleDoc()
	d := sampleDoc()
	d.Nodes = d.Nodes[:1]

	data, err := json.Marshal(Diff(old, d))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"b":null`) {
		t.Errorf("expected deletion marker, got %s", s)
	}
	if strings.Contains(s, `"name"`) {
		t.Errorf("unchanged name should be omitted: %s", s)
	}
}
