package api

// Index is served by an allmeta mirror at /index.json. It lists the jars
// of the mirror's catalog that are present in its local repository.
type Index struct {
	InstrumentationRevision int          `json:"instrumentation_revision"`
	Artifacts               []IndexEntry `json:"artifacts"`
	Missing                 []string     `json:"missing,omitempty"` // coordinates not in the local repository
}

// IndexEntry describes one jar the mirror can serve.
type IndexEntry struct {
	Coordinate string `json:"coordinate"` // group:artifact:version
	Path       string `json:"path"`       // repository path, relative to the mirror root
	SHA256     string `json:"sha256"`
	Size       int64  `json:"size"`
}
