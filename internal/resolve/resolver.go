// Package resolve turns artifact coordinates into local jar files.
//
// The only implementation is MavenResolver, which reads from a local
// repository laid out like ~/.m2/repository and downloads missing jars from
// an ordered list of remote Maven repositories. Anything that can answer
// "which files satisfy this coordinate" can stand in for it through the
// Resolver interface.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flo-mic/allmeta/internal/auth"
	"github.com/flo-mic/allmeta/internal/catalog"
)

// ErrNotFound is wrapped by ResolutionError when no repository has the artifact.
var ErrNotFound = errors.New("artifact not found")

// Resolver returns the local files that satisfy a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, c catalog.Coordinate) ([]string, error)
}

// ResolutionError reports a coordinate that could not be resolved.
type ResolutionError struct {
	Coordinate catalog.Coordinate
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Coordinate, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Options configures a MavenResolver.
type Options struct {
	Repositories    []string // remote repository roots, tried in order
	LocalRepository string   // absolute path of the local repository
	Token           string   // sent as a bearer token when set
	Offline         bool     // never touch the network
	Retries         int      // extra attempts on transport errors and 5xx
	RetryDelay      time.Duration
	Client          *http.Client
	Logger          *slog.Logger
}

// MavenResolver resolves coordinates against a local repository and falls
// back to downloading from remote repositories. It is safe for concurrent use.
type MavenResolver struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
	memo   *lru.Cache[catalog.Coordinate, []string]
}

// NewMavenResolver validates opts and returns a ready resolver.
func NewMavenResolver(opts Options) (*MavenResolver, error) {
	if opts.LocalRepository == "" {
		return nil, fmt.Errorf("local repository is required")
	}
	if len(opts.Repositories) == 0 && !opts.Offline {
		return nil, fmt.Errorf("at least one remote repository is required unless offline")
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	memo, err := lru.New[catalog.Coordinate, []string](256)
	if err != nil {
		return nil, err
	}

	return &MavenResolver{opts: opts, client: client, logger: logger, memo: memo}, nil
}

// LocalPath is where the jar for c lives inside the local repository.
func (r *MavenResolver) LocalPath(c catalog.Coordinate) string {
	return filepath.Join(r.opts.LocalRepository, filepath.FromSlash(c.RepositoryPath()))
}

// Resolve returns the local jar for c, downloading it first if needed.
func (r *MavenResolver) Resolve(ctx context.Context, c catalog.Coordinate) ([]string, error) {
	if paths, ok := r.memo.Get(c); ok {
		return paths, nil
	}

	local := r.LocalPath(c)
	_, err := os.Stat(local)
	switch {
	case err == nil:
		r.logger.Debug("artifact found in local repository", "coordinate", c.String(), "path", local)
		return r.remember(c, local), nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &ResolutionError{Coordinate: c, Err: err}
	}

	if r.opts.Offline {
		return nil, &ResolutionError{
			Coordinate: c,
			Err:        fmt.Errorf("%w in local repository %s (offline)", ErrNotFound, r.opts.LocalRepository),
		}
	}

	var errs []error
	notFound := 0
	for _, repo := range r.opts.Repositories {
		err := r.fetch(ctx, repo, c, local)
		if err == nil {
			return r.remember(c, local), nil
		}
		if ctx.Err() != nil {
			return nil, &ResolutionError{Coordinate: c, Err: ctx.Err()}
		}
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			notFound++
			r.logger.Debug("artifact not in repository", "coordinate", c.String(), "repository", repo)
			continue
		}
		errs = append(errs, err)
	}

	if notFound == len(r.opts.Repositories) {
		return nil, &ResolutionError{
			Coordinate: c,
			Err:        fmt.Errorf("%w in %d repositories", ErrNotFound, notFound),
		}
	}
	return nil, &ResolutionError{Coordinate: c, Err: errors.Join(errs...)}
}

func (r *MavenResolver) remember(c catalog.Coordinate, path string) []string {
	paths := []string{path}
	r.memo.Add(c, paths)
	return paths
}

func (r *MavenResolver) fetch(ctx context.Context, repo string, c catalog.Coordinate, dest string) error {
	url := strings.TrimSuffix(repo, "/") + "/" + c.RepositoryPath()

	var err error
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		if attempt > 0 {
			r.logger.Warn("download failed, retrying", "url", url, "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * r.opts.RetryDelay):
			}
		}
		err = r.download(ctx, url, dest)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func (r *MavenResolver) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	auth.SetBearer(req, r.opts.Token)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{url: url, code: resp.StatusCode}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	// Write next to the destination and rename so an interrupted download
	// never leaves a truncated jar in the local repository.
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		copyErr = fmt.Errorf("short read: got %d of %d bytes", n, resp.ContentLength)
	}
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	r.logger.Info("downloaded artifact", "url", url, "bytes", n)
	return nil
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
