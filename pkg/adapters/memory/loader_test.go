package memory_test

import (
	"testing"

	"github.com/aretw0/portgraph/pkg/adapters/memory"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/ports"
	contract "github.com/aretw0/portgraph/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewLoader(map[string]*codec.GraphDocument{
		"first":  ports.SampleDocument("First"),
		"second": ports.SampleDocument("Second"),
	})

	contract.GraphLoaderContractTest(t, loader, map[string]string{
		"first":  "First",
		"second": "Second",
	})
}

func TestInMemoryLoader_FromRaw(t *testing.T) {
	loader, err := memory.NewFromRaw(codec.FormatYAML, map[string]string{
		"tiny": "version: 1\nname: Tiny\nnodes:\n  - id: a\n    type: DisplayValue\n",
	})
	if err != nil {
		t.Fatalf("NewFromRaw() failed: %v", err)
	}

	contract.GraphLoaderContractTest(t, loader, map[string]string{"tiny": "Tiny"})

	if _, err := memory.NewFromRaw(codec.FormatJSON, map[string]string{"bad": "{"}); err == nil {
		t.Error("expected parse error")
	}
}
