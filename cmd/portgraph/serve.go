package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/internal/config"
	"github.com/aretw0/portgraph/internal/logging"
	"github.com/aretw0/portgraph/internal/presentation/tui"
	"github.com/aretw0/portgraph/pkg/adapters/file"
	httpAdapter "github.com/aretw0/portgraph/pkg/adapters/http"
	loamAdapter "github.com/aretw0/portgraph/pkg/adapters/loam"
	"github.com/aretw0/portgraph/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/portgraph/pkg/adapters/redis"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/observability"
	"github.com/aretw0/portgraph/pkg/persistence/middleware"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graph editing HTTP server",
	Long: `Starts the workspace server, exposing graph editing as a JSON API over HTTP
with change streams over SSE.

Graphs live in the configured store (memory, file or redis). With --source,
graphs found in a Loam directory are imported on start, and re-imported on
change when --watch is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Configuration file (YAML or JSON)")
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides config)")
	serveCmd.Flags().String("store", "", "Graph store: memory, file or redis (overrides config)")
	serveCmd.Flags().String("dir", "", "Directory of the file store (overrides config)")
	serveCmd.Flags().String("redis", "", "Redis address of the redis store (overrides config)")
	serveCmd.Flags().String("source", "", "Loam directory of graphs to import on start")
	serveCmd.Flags().Bool("watch", false, "Re-import source graphs when they change")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Bool("quiet", false, "Do not print the banner")
}

// serveConfig loads the configuration file and applies flag overrides.
func serveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("addr"); v != "" {
		cfg.Listen = v
	}
	if v, _ := flags.GetString("store"); v != "" {
		cfg.Store.Kind = v
	}
	if v, _ := flags.GetString("dir"); v != "" {
		cfg.Store.Dir = v
	}
	if v, _ := flags.GetString("redis"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("metrics") {
		cfg.Metrics, _ = flags.GetBool("metrics")
	}
	return cfg, cfg.Validate()
}

// openStore builds the configured graph store wrapped in its middleware.
// The redis store also yields a distributed locker sharing its client.
func openStore(cfg config.StoreConfig) (ports.GraphStore, ports.DistributedLocker, error) {
	store, locker, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		for _, p := range cfg.Redact {
			if _, err := regexp.Compile(p); err != nil {
				return nil, nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	if cfg.EncryptKeyEnv != "" {
		key, err := base64.StdEncoding.DecodeString(os.Getenv(cfg.EncryptKeyEnv))
		if err != nil || len(key) != 32 {
			return nil, nil, fmt.Errorf("%s must hold a base64 encoded 32 byte key", cfg.EncryptKeyEnv)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), locker, nil
}

func openBackend(cfg config.StoreConfig) (ports.GraphStore, ports.DistributedLocker, error) {
	switch cfg.Kind {
	case "file":
		if cfg.Format == "" {
			cfg.Format = string(codec.FormatJSON)
		}
		format, err := codec.ParseFormat(cfg.Format)
		if err != nil {
			return nil, nil, err
		}
		return file.New(cfg.Dir, file.WithFormat(format)), nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		opts := []redisAdapter.Option{redisAdapter.WithTTL(cfg.TTL)}
		lockPrefix := "portgraph:"
		if cfg.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(cfg.Prefix))
			lockPrefix = cfg.Prefix
		}
		return redisAdapter.NewFromClient(client, opts...), redisAdapter.NewLocker(client, lockPrefix), nil
	case "memory", "":
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Kind)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.NewWithFormat(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return err
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		tui.PrintBanner(cmd.ErrOrStderr())
	}

	editorOpts := []portgraph.Option{portgraph.WithLogger(logger)}
	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithVersion(portgraph.Version),
	}
	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		editorOpts = append(editorOpts, portgraph.WithHooks(metrics.Hooks()))
		handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
	}
	ed := portgraph.New(editorOpts...)

	store, locker, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	var wsOpts []workspace.Option
	if locker != nil {
		wsOpts = append(wsOpts, workspace.WithLocker(locker))
	}
	ws := ed.Workspace(store, wsOpts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if source, _ := cmd.Flags().GetString("source"); source != "" {
		loader, err := loamAdapter.Open(source)
		if err != nil {
			return err
		}
		n, err := ed.Import(ctx, loader, ws)
		if err != nil {
			logger.Warn("Some source graphs were not imported", "err", err)
		}
		logger.Info("Imported source graphs", "dir", source, "count", n)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			changes, err := loader.Watch(ctx)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", source, err)
			}
			fan := newFanout()
			handlerOpts = append(handlerOpts, httpAdapter.WithWatcher(fan))
			g.Go(func() error {
				return reimport(ctx, ed, loader, ws, changes, fan, logger)
			})
		}
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpAdapter.NewHandler(ws, ed.Registry, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("Starting portgraph server", "address", srv.Addr, "store", cfg.Store.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// reimport copies every changed source graph into the workspace, then
// publishes the ID to SSE subscribers.
func reimport(ctx context.Context, ed *portgraph.Editor, src ports.GraphLoader, ws *workspace.Manager, changes <-chan string, fan *fanout, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			if _, err := ed.Import(ctx, src, ws, id); err != nil {
				logger.Warn("Failed to re-import graph", "graph_id", id, "err", err)
				continue
			}
			logger.Info("Re-imported graph", "graph_id", id)
			fan.publish(id)
		}
	}
}

// fanout hands every published graph ID to each current subscriber.
// It implements ports.Watchable so the HTTP server can stream it.
type fanout struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func newFanout() *fanout {
	return &fanout{subs: make(map[chan string]struct{})}
}

// Watch subscribes until ctx ends.
func (f *fanout) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (f *fanout) publish(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- id:
		default:
			// Slow subscriber, drop.
		}
	}
}
