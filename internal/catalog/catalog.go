package catalog

import (
	"fmt"
	"strings"
)

const (
	// GroupID is the Maven group shared by every android-all artifact.
	GroupID = "org.robolectric"

	// AndroidAll is the artifact id of the plain platform jars.
	AndroidAll = "android-all"

	// AndroidAllInstrumented is the artifact id of the pre-instrumented jars.
	AndroidAllInstrumented = "android-all-instrumented"
)

// Entry is one platform release tracked by the catalog.
type Entry struct {
	PlatformVersion string `yaml:"version"`
	BuildRevision   string `yaml:"revision"`
}

func (e Entry) String() string {
	return fmt.Sprintf("(%s, %s)", e.PlatformVersion, e.BuildRevision)
}

// Coordinate identifies a binary artifact in a Maven repository.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// String returns the "group:artifact:version" form used by Maven tooling.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// FileName is the name of the jar a repository serves for c.
func (c Coordinate) FileName() string {
	return c.ArtifactID + "-" + c.Version + ".jar"
}

// RepositoryPath returns the slash-separated location of the jar relative to
// a repository root, e.g. org/robolectric/android-all/9-robolectric-4913185-2/android-all-9-robolectric-4913185-2.jar.
func (c Coordinate) RepositoryPath() string {
	return strings.Join([]string{
		strings.ReplaceAll(c.GroupID, ".", "/"),
		c.ArtifactID,
		c.Version,
		c.FileName(),
	}, "/")
}

// Pair holds both coordinates derived from a single Entry.
type Pair struct {
	Plain        Coordinate
	Instrumented Coordinate
}

// BuildCoordinates derives the plain and pre-instrumented coordinates of e.
// Version strings are not validated.
func BuildCoordinates(e Entry, instrumentationRevision int) Pair {
	version := e.PlatformVersion + "-robolectric-" + e.BuildRevision
	return Pair{
		Plain: Coordinate{
			GroupID:    GroupID,
			ArtifactID: AndroidAll,
			Version:    version,
		},
		Instrumented: Coordinate{
			GroupID:    GroupID,
			ArtifactID: AndroidAllInstrumented,
			Version:    fmt.Sprintf("%s-i%d", version, instrumentationRevision),
		},
	}
}

// BuildAll applies BuildCoordinates to every entry, keeping catalog order.
func BuildAll(entries []Entry, instrumentationRevision int) []Pair {
	pairs := make([]Pair, len(entries))
	for i, e := range entries {
		pairs[i] = BuildCoordinates(e, instrumentationRevision)
	}
	return pairs
}
