package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/internal/config"
	"github.com/aretw0/portgraph/internal/logging"
	"github.com/aretw0/portgraph/internal/testutils"
	"github.com/aretw0/portgraph/pkg/adapters/file"
	"github.com/aretw0/portgraph/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/portgraph/pkg/adapters/redis"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/persistence/middleware"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args, resetting flags left over from
// earlier runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func reset(cmd *cobra.Command) {
	visit := func(f *pflag.Flag) {
		if f.Value.Type() != "stringSlice" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(visit)
	cmd.PersistentFlags().VisitAll(visit)
	for _, c := range cmd.Commands() {
		reset(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portgraph version")
}

func TestNewAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "math.yaml")

	out, err := execute(t, "new", path, "--template", "math")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote math graph")

	_, err = execute(t, "new", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "new", path, "--force", "--template", "logic")
	require.NoError(t, err)

	out, err = execute(t, "inspect", path, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# logic")
	assert.Contains(t, out, "ToggleNode")

	out, err = execute(t, "graph", path, "--select", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart LR")
	assert.Contains(t, out, "class toggle selected")
}

func TestValidate(t *testing.T) {
	path := testutils.WriteFile(t, "stale.yaml", `
version: 1
name: stale
nodes:
  - id: sum
    type: MathNode
    state: {a: 2, b: 3}
`)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sum (MathNode): added a, b, result")
	assert.Contains(t, out, "out of date")

	_, err = execute(t, "validate", path, "--fix")
	require.NoError(t, err)

	out, err = execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (1 nodes)")

	bad := testutils.WriteFile(t, "bad.json", `{"version": 1, "name": "", "nodes": [{"id": "x"}]}`)
	out, err = execute(t, "validate", bad)
	assert.ErrorContains(t, err, "validation failed")
	assert.Contains(t, out, "  - ")
}

func TestServeConfig(t *testing.T) {
	reset(rootCmd)
	cfgPath := testutils.WriteFile(t, "portgraph.yaml", `
listen: localhost:9000
store:
  kind: file
  dir: /tmp/graphs
log:
  level: debug
`)

	flags := serveCmd.Flags()
	require.NoError(t, flags.Set("config", cfgPath))
	require.NoError(t, flags.Set("addr", "localhost:9100"))
	require.NoError(t, flags.Set("metrics", "true"))

	cfg, err := serveConfig(serveCmd)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9100", cfg.Listen)
	assert.Equal(t, "file", cfg.Store.Kind)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics)

	require.NoError(t, flags.Set("store", "redis"))
	_, err = serveConfig(serveCmd)
	assert.ErrorContains(t, err, "RedisAddr")
	reset(rootCmd)
}

func TestOpenStore(t *testing.T) {
	store, locker, err := openStore(config.StoreConfig{Kind: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.Nil(t, locker)

	store, _, err = openStore(config.StoreConfig{Kind: "file", Dir: t.TempDir(), Format: "yaml"})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)

	mr := miniredis.RunT(t)
	store, locker, err = openStore(config.StoreConfig{Kind: "redis", RedisAddr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	assert.IsType(t, &redisAdapter.Store{}, store)
	require.NotNil(t, locker)

	unlock, err := locker.Lock(context.Background(), "g1", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:g1"))
	require.NoError(t, unlock(context.Background()))

	_, _, err = openStore(config.StoreConfig{Kind: "s3"})
	assert.Error(t, err)
}

func TestOpenStore_Middleware(t *testing.T) {
	t.Setenv("PORTGRAPH_TEST_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	dir := t.TempDir()

	store, _, err := openStore(config.StoreConfig{
		Kind:          "file",
		Dir:           dir,
		Format:        "json",
		EncryptKeyEnv: "PORTGRAPH_TEST_KEY",
		Redact:        []string{"^op$"},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "g", ports.SampleDocument("sealed")))
	loaded, err := store.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Nodes[0].State["op"])

	raw, err := os.ReadFile(filepath.Join(dir, "g.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "MathNode")

	t.Setenv("PORTGRAPH_TEST_KEY", "short")
	_, _, err = openStore(config.StoreConfig{Kind: "memory", EncryptKeyEnv: "PORTGRAPH_TEST_KEY"})
	assert.ErrorContains(t, err, "32 byte key")

	_, _, err = openStore(config.StoreConfig{Kind: "memory", Redact: []string{"("}})
	assert.ErrorContains(t, err, "invalid redact pattern")
}

func TestFanout(t *testing.T) {
	f := newFanout()
	ctx, cancel := context.WithCancel(context.Background())

	a, err := f.Watch(ctx)
	require.NoError(t, err)
	b, err := f.Watch(context.Background())
	require.NoError(t, err)

	f.publish("math")
	assert.Equal(t, "math", <-a)
	assert.Equal(t, "math", <-b)

	cancel()
	_, open := <-a
	assert.False(t, open)
}

func TestReimport(t *testing.T) {
	ed := portgraph.New()
	g, err := ed.Template("math")
	require.NoError(t, err)
	doc, err := ed.Encode(g)
	require.NoError(t, err)

	src := memory.NewLoader(map[string]*codec.GraphDocument{"math": doc})
	ws := ed.Workspace(memory.NewStore())
	fan := newFanout()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := fan.Watch(ctx)
	require.NoError(t, err)

	changes := make(chan string, 2)
	done := make(chan error, 1)
	go func() { done <- reimport(ctx, ed, src, ws, changes, fan, logging.NewNop()) }()

	changes <- "missing"
	changes <- "math"
	select {
	case id := <-sub:
		assert.Equal(t, "math", id)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for re-import")
	}

	ids, err := ws.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"math"}, ids)

	close(changes)
	require.NoError(t, <-done)
}
