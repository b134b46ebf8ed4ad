package loam

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/portgraph/internal/testutils"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mathGraph = `---
name: Math
version: 1
nodes:
  - id: add
    type: MathNode
    position: {x: 0, y: 0}
    state: {a: 1, b: 2, op: add}
    ports:
      - name: result
        type: float
        direction: output
        connections:
          - node: show
            port: value
            reroute:
              - {x: 100, y: 40}
  - id: show
    type: DisplayValue
    position: {x: 220, y: 0}
    ports:
      - name: value
        type: any
        direction: input
        connection: single
        connections:
          - node: add
            port: result
---
Adds two numbers and shows the result.
`

const logicGraph = `{
  "name": "Logic",
  "version": 1,
  "nodes": [
    {"id": "pulse", "type": "PulseNode", "position": {"x": 0, "y": 0}}
  ]
}`

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, files)
	return New(loam.NewTypedRepository[GraphMetadata](repo))
}

var _ ports.GraphLoader = (*Loader)(nil)
var _ ports.Watchable = (*Loader)(nil)

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, map[string]string{
		"math.md":    mathGraph,
		"logic.json": logicGraph,
	})

	tests.GraphLoaderContractTest(t, loader, map[string]string{
		"math":  "Math",
		"logic": "Logic",
	})
}

func TestLoader_Document(t *testing.T) {
	loader := seed(t, map[string]string{"math.md": mathGraph})

	doc, err := loader.Load(context.Background(), "math")
	require.NoError(t, err)

	assert.Equal(t, "Adds two numbers and shows the result.", doc.Description)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, 220.0, doc.Nodes[1].Position.X)
	require.Len(t, doc.Nodes[0].Ports, 1)
	conn := doc.Nodes[0].Ports[0].Connections
	require.Len(t, conn, 1)
	assert.Equal(t, "show", conn[0].Node)
	assert.Equal(t, 40.0, conn[0].Reroute[0].Y)
	assert.Equal(t, 1, doc.Connections())
}

func TestLoader_DefaultsFromFile(t *testing.T) {
	loader := seed(t, map[string]string{
		"bare.md": "---\nnodes: []\n---\nJust a description\n",
	})

	doc, err := loader.Load(context.Background(), "bare")
	require.NoError(t, err)
	assert.Equal(t, "bare", doc.Name)
	assert.Equal(t, 1, doc.Version)
}

func TestLoader_List_NormalizesIDs(t *testing.T) {
	loader := seed(t, map[string]string{
		"start.md":    "---\nid: start.md\nname: Start\n---\n",
		"choice.json": `{"id": "choice.json", "name": "Choice"}`,
		"implicit.md": "---\nname: Implicit\n---\nID is implied from filename",
	})

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"choice", "implicit", "start"}, ids)
}

func TestLoader_List_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"dup.md":   "---\nname: One\n---\n",
		"dup.json": `{"name": "Two"}`,
	})

	_, err := loader.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

// Open configures Loam in strict mode, so integers in JSON state are not
// widened to float64.
func TestOpen_StrictNumbers(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"numbers.json": `{
  "name": "Numbers",
  "nodes": [
    {"id": "s", "type": "StateNode", "state": {"entered": 9007199254740991, "ratio": 1.5}}
  ]
}`,
	})

	loader, err := Open(dir)
	require.NoError(t, err)

	doc, err := loader.Load(context.Background(), "numbers")
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 1)

	switch v := doc.Nodes[0].State["entered"].(type) {
	case float64:
		t.Fatalf("strict mode failed: entered is float64 (%v)", v)
	case int64:
		assert.Equal(t, int64(9007199254740991), v)
	case int:
		assert.Equal(t, 9007199254740991, v)
	case json.Number:
		n, err := v.Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740991), n)
	default:
		t.Logf("entered decoded as %T", v)
	}
	assert.Equal(t, 1.5, doc.Nodes[0].State["ratio"])
}
