// Package mirror serves a local repository's android-all jars to other
// machines in Maven repository layout, so CI runners can point their
// allmeta catalog (or Gradle) at a workstation or cache host.
//
// Only jars named by the catalog are served. Every jar also gets a
// "<jar>.sha256" sidecar, and /index.json lists what is available.
package mirror

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flo-mic/allmeta/internal/api"
	"github.com/flo-mic/allmeta/internal/auth"
	"github.com/flo-mic/allmeta/internal/catalog"
	"github.com/flo-mic/allmeta/internal/digest"
)

// IndexPath is where the mirror publishes its api.Index.
const IndexPath = "/index.json"

const sidecarSuffix = ".sha256"

// Server serves the catalog's jars out of a local repository.
type Server struct {
	local       string
	rev         int
	coordinates []catalog.Coordinate
	byPath      map[string]catalog.Coordinate
	sums        *lru.Cache[sumKey, digest.Digest]
	logger      *slog.Logger
}

// sumKey invalidates a cached digest when the jar is replaced.
type sumKey struct {
	path    string
	size    int64
	modTime time.Time
}

// New returns a Server for the coordinates of pairs, plain before
// instrumented, reading jars from the local repository at local.
func New(local string, rev int, pairs []catalog.Pair, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	// lru.New only fails for a non-positive size.
	sums, _ := lru.New[sumKey, digest.Digest](512)
	s := &Server{
		local:  local,
		rev:    rev,
		byPath: make(map[string]catalog.Coordinate, 2*len(pairs)),
		sums:   sums,
		logger: logger,
	}
	for _, p := range pairs {
		for _, c := range []catalog.Coordinate{p.Plain, p.Instrumented} {
			s.coordinates = append(s.coordinates, c)
			s.byPath[c.RepositoryPath()] = c
		}
	}
	return s
}

// Handler returns the mirror's HTTP handler. A non-empty token is required
// as a bearer credential on every request.
func (s *Server) Handler(token string) http.Handler {
	return auth.Middleware(token, http.HandlerFunc(s.serve))
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == IndexPath {
		s.serveIndex(w)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/")
	sidecar := strings.HasSuffix(rel, sidecarSuffix)
	rel = strings.TrimSuffix(rel, sidecarSuffix)

	c, ok := s.byPath[rel]
	if !ok {
		http.NotFound(w, r)
		return
	}

	path := s.path(c)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("jar not in local repository", "coordinate", c.String())
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("opening jar", "path", path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if sidecar {
		d, err := s.digest(path, info)
		if err != nil {
			s.logger.Error("hashing jar", "path", path, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(d + "\n"))
		return
	}

	s.logger.Info("serving jar", "coordinate", c.String(), "remote", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/java-archive")
	http.ServeContent(w, r, c.FileName(), info.ModTime(), f)
}

func (s *Server) serveIndex(w http.ResponseWriter) {
	idx, err := s.Index()
	if err != nil {
		s.logger.Error("building index", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(idx)
}

// Index lists the catalog's jars that are present locally, in catalog order.
func (s *Server) Index() (*api.Index, error) {
	idx := &api.Index{InstrumentationRevision: s.rev, Artifacts: []api.IndexEntry{}}
	for _, c := range s.coordinates {
		path := s.path(c)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			idx.Missing = append(idx.Missing, c.String())
			continue
		}
		if err != nil {
			return nil, err
		}
		d, err := s.digest(path, info)
		if err != nil {
			return nil, err
		}
		idx.Artifacts = append(idx.Artifacts, api.IndexEntry{
			Coordinate: c.String(),
			Path:       c.RepositoryPath(),
			SHA256:     string(d),
			Size:       info.Size(),
		})
	}
	return idx, nil
}

func (s *Server) path(c catalog.Coordinate) string {
	return filepath.Join(s.local, filepath.FromSlash(c.RepositoryPath()))
}

func (s *Server) digest(path string, info os.FileInfo) (digest.Digest, error) {
	key := sumKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if d, ok := s.sums.Get(key); ok {
		return d, nil
	}
	d, err := digest.HashFile(path)
	if err != nil {
		return "", err
	}
	s.sums.Add(key, d)
	return d, nil
}
