package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/config"
	"github.com/flo-mic/allmeta/internal/reconcile"
	"github.com/flo-mic/allmeta/internal/resolve"
)

// resolveFlags are shared by every command that resolves artifacts.
type resolveFlags struct {
	config  string
	jobs    int
	offline bool
	verbose bool
}

func (f *resolveFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "Catalog file (default: ./allmeta.yaml, else the built-in catalog)")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Artifacts resolved in parallel (default: catalog 'jobs')")
	fs.BoolVar(&f.offline, "offline", false, "Only use jars already in the local repository")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log resolver activity at debug level")
}

// session is everything a command needs for one reconciliation pass.
type session struct {
	catalog  *config.Catalog
	resolver resolve.Resolver
	jobs     int
	log      io.Writer // progress lines and resolver logs share one lock
}

func (f *resolveFlags) open(stderr io.Writer) (*session, error) {
	cfg, settings, err := loadCatalog(f.config)
	if err != nil {
		return nil, err
	}

	local, err := localRepository(cfg)
	if err != nil {
		return nil, err
	}
	log := &syncWriter{w: stderr}

	resolver, err := resolve.NewMavenResolver(resolve.Options{
		Repositories:    cfg.Repositories,
		LocalRepository: local,
		Token:           settings.Token,
		Offline:         f.offline,
		Retries:         2,
		Logger:          newLogger(log, f.verbose),
	})
	if err != nil {
		return nil, err
	}

	jobs := cfg.Jobs
	if f.jobs > 0 {
		jobs = f.jobs
	}
	return &session{catalog: cfg, resolver: resolver, jobs: jobs, log: log}, nil
}

func (s *session) run(ctx context.Context, variants reconcile.Variant) ([]reconcile.Result, error) {
	return reconcile.Run(ctx, s.catalog.Entries, reconcile.Options{
		Resolver:                s.resolver,
		InstrumentationRevision: s.catalog.InstrumentationRevision,
		Variants:                variants,
		Jobs:                    s.jobs,
		Log:                     s.log,
	})
}

// loadCatalog picks the catalog file, then layers user settings and env
// overrides on top.
func loadCatalog(path string) (*config.Catalog, *config.Settings, error) {
	var (
		cfg *config.Catalog
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadCatalog(path)
	case fileExists(config.DefaultCatalogFile):
		cfg, err = config.LoadCatalog(config.DefaultCatalogFile)
	default:
		cfg, err = config.DefaultCatalog()
	}
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	settings.Apply(cfg)
	config.ApplyEnv(cfg)
	return cfg, settings, nil
}

func localRepository(cfg *config.Catalog) (string, error) {
	local, err := config.ExpandHome(cfg.LocalRepository)
	if err != nil {
		return "", fmt.Errorf("resolving local repository: %w", err)
	}
	return filepath.Abs(local)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())
}

// interruptible returns a context cancelled on Ctrl-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
