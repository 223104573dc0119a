package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flo-mic/allmeta/internal/catalog"
	"github.com/flo-mic/allmeta/internal/digest"
	"github.com/flo-mic/allmeta/internal/reconcile"
)

func result(version, revision string, plainDigest, instrumentedDigest digest.Digest) reconcile.Result {
	e := catalog.Entry{PlatformVersion: version, BuildRevision: revision}
	pair := catalog.BuildCoordinates(e, 7)
	return reconcile.Result{
		Entry:       e,
		Coordinates: pair,
		Plain: []reconcile.Artifact{{
			Coordinate: pair.Plain,
			Path:       "/repo/" + pair.Plain.FileName(),
			Digest:     plainDigest,
		}},
		Instrumented: []reconcile.Artifact{{
			Coordinate: pair.Instrumented,
			Path:       "/repo/" + pair.Instrumented.FileName(),
			Digest:     instrumentedDigest,
		}},
	}
}

func d(c byte) digest.Digest {
	return digest.Digest(strings.Repeat(string(c), 64))
}

func TestConsole(t *testing.T) {
	results := []reconcile.Result{
		result("9", "4913185-2", d('a'), d('b')),
		result("10", "5803371", d('c'), d('d')),
	}
	var buf bytes.Buffer
	if err := Console(&buf, results); err != nil {
		t.Fatal(err)
	}

	want := "SHA-256 of android-all-9-robolectric-4913185-2.jar: " + string(d('a')) + "\n" +
		"SHA-256 of android-all-instrumented-9-robolectric-4913185-2-i7.jar: " + string(d('b')) + "\n" +
		"SHA-256 of android-all-10-robolectric-5803371.jar: " + string(d('c')) + "\n" +
		"SHA-256 of android-all-instrumented-10-robolectric-5803371-i7.jar: " + string(d('d')) + "\n"
	if buf.String() != want {
		t.Errorf("Console output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestBazelVersions_ReverseOrderWithLegacyComma(t *testing.T) {
	results := []reconcile.Result{
		result("A", "1", d('1'), d('a')),
		result("B", "2", d('2'), d('b')),
		result("C", "3", d('3'), d('c')),
	}
	var buf bytes.Buffer
	if err := BazelVersions(&buf, results, BazelOptions{}); err != nil {
		t.Fatal(err)
	}

	want := `DEFAULT_AVAILABLE_VERSIONS = [
    robolectric_version(
        version="C-robolectric-3-i7",
        sha256="` + string(d('c')) + `,"
    ),
    robolectric_version(
        version="B-robolectric-2-i7",
        sha256="` + string(d('b')) + `,"
    ),
    robolectric_version(
        version="A-robolectric-1-i7",
        sha256="` + string(d('a')) + `,"
    ),
]
`
	if buf.String() != want {
		t.Errorf("BazelVersions output:\n%s\nwant:\n%s", buf.String(), want)
	}
	// Plain jars never appear in the snippet.
	if strings.Contains(buf.String(), string(d('1'))) {
		t.Error("plain digest leaked into the Bazel snippet")
	}
}

func TestBazelVersions_FixedComma(t *testing.T) {
	var buf bytes.Buffer
	results := []reconcile.Result{result("9", "4913185-2", d('1'), d('f'))}
	if err := BazelVersions(&buf, results, BazelOptions{FixSHA256Comma: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `sha256="`+string(d('f'))+`",`+"\n") {
		t.Errorf("expected comma outside the quotes, got:\n%s", buf.String())
	}
}

func TestBazelVersions_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := BazelVersions(&buf, nil, BazelOptions{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "DEFAULT_AVAILABLE_VERSIONS = [\n]\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestChecksums(t *testing.T) {
	res := result("9", "4913185-2", d('a'), d('b'))
	var buf bytes.Buffer
	err := Checksums(&buf, reconcile.Artifacts([]reconcile.Result{res}), func(a reconcile.Artifact) string {
		return a.Coordinate.RepositoryPath()
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != string(d('a'))+"  org/robolectric/android-all/9-robolectric-4913185-2/android-all-9-robolectric-4913185-2.jar" {
		t.Errorf("line 0 = %q", lines[0])
	}
}
