package reconcile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/flo-mic/allmeta/internal/catalog"
	"github.com/flo-mic/allmeta/internal/digest"
	"github.com/flo-mic/allmeta/internal/resolve"
)

// Variant selects which coordinates of an entry are resolved.
type Variant int

const (
	Plain Variant = 1 << iota
	Instrumented

	Both = Plain | Instrumented
)

// Artifact is one resolved file and its digest.
type Artifact struct {
	Coordinate catalog.Coordinate
	Path       string
	Digest     digest.Digest
}

// FileName is the base name of the resolved file.
func (a Artifact) FileName() string {
	return filepath.Base(a.Path)
}

// Result holds everything resolved for one catalog entry.
type Result struct {
	Entry        catalog.Entry
	Coordinates  catalog.Pair
	Plain        []Artifact
	Instrumented []Artifact
}

// Options controls a reconciliation pass.
type Options struct {
	Resolver                resolve.Resolver
	InstrumentationRevision int
	Variants                Variant
	Jobs                    int       // concurrent entries; <= 1 runs sequentially
	Log                     io.Writer // progress lines, may be nil
}

// Run resolves and hashes every entry. Entries may be processed
// concurrently but results are returned in catalog order. The first error
// cancels outstanding work and is returned.
func Run(ctx context.Context, entries []catalog.Entry, opts Options) ([]Result, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("reconcile: resolver is required")
	}
	if opts.Variants == 0 {
		opts.Variants = Both
	}
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	opts.Log = &lockedWriter{w: opts.Log}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]Result, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Queued behind a failed entry: never reach the resolver.
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runEntry(ctx, e, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runEntry(ctx context.Context, e catalog.Entry, opts Options) (Result, error) {
	res := Result{
		Entry:       e,
		Coordinates: catalog.BuildCoordinates(e, opts.InstrumentationRevision),
	}

	var err error
	if opts.Variants&Plain != 0 {
		fmt.Fprintf(opts.Log, "[allmeta] Configure android-all %s\n", e)
		if res.Plain, err = resolveAndHash(ctx, opts.Resolver, res.Coordinates.Plain); err != nil {
			return res, err
		}
	}
	if opts.Variants&Instrumented != 0 {
		fmt.Fprintf(opts.Log, "[allmeta] Configure android-all-instrumented %s\n", e)
		if res.Instrumented, err = resolveAndHash(ctx, opts.Resolver, res.Coordinates.Instrumented); err != nil {
			return res, err
		}
	}
	return res, nil
}

func resolveAndHash(ctx context.Context, r resolve.Resolver, c catalog.Coordinate) ([]Artifact, error) {
	paths, err := r.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := digest.HashFile(p)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Coordinate: c, Path: p, Digest: d})
	}
	return artifacts, nil
}

// Artifacts flattens results in catalog order, plain before instrumented.
func Artifacts(results []Result) []Artifact {
	var all []Artifact
	for _, r := range results {
		all = append(all, r.Plain...)
		all = append(all, r.Instrumented...)
	}
	return all
}

// lockedWriter serializes progress lines written from concurrent entries.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
