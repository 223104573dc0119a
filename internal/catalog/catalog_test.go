package catalog

import "testing"

func TestBuildCoordinates(t *testing.T) {
	pair := BuildCoordinates(Entry{PlatformVersion: "9", BuildRevision: "4913185-2"}, 7)

	if pair.Plain.Version != "9-robolectric-4913185-2" {
		t.Errorf("Plain.Version = %q, want %q", pair.Plain.Version, "9-robolectric-4913185-2")
	}
	if pair.Instrumented.Version != "9-robolectric-4913185-2-i7" {
		t.Errorf("Instrumented.Version = %q, want %q", pair.Instrumented.Version, "9-robolectric-4913185-2-i7")
	}
	if pair.Plain.String() != "org.robolectric:android-all:9-robolectric-4913185-2" {
		t.Errorf("Plain.String() = %q", pair.Plain.String())
	}
	if pair.Instrumented.String() != "org.robolectric:android-all-instrumented:9-robolectric-4913185-2-i7" {
		t.Errorf("Instrumented.String() = %q", pair.Instrumented.String())
	}
}

func TestBuildCoordinates_NoValidation(t *testing.T) {
	// Hand-curated catalogs are trusted: odd strings pass through untouched.
	pair := BuildCoordinates(Entry{PlatformVersion: "", BuildRevision: "r 0"}, 0)
	if pair.Plain.Version != "-robolectric-r 0" {
		t.Errorf("Plain.Version = %q", pair.Plain.Version)
	}
	if pair.Instrumented.Version != "-robolectric-r 0-i0" {
		t.Errorf("Instrumented.Version = %q", pair.Instrumented.Version)
	}
}

func TestRepositoryPath(t *testing.T) {
	c := Coordinate{GroupID: "org.robolectric", ArtifactID: "android-all", Version: "14-robolectric-10818077"}
	want := "org/robolectric/android-all/14-robolectric-10818077/android-all-14-robolectric-10818077.jar"
	if got := c.RepositoryPath(); got != want {
		t.Errorf("RepositoryPath() = %q, want %q", got, want)
	}
	if got := c.FileName(); got != "android-all-14-robolectric-10818077.jar" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestBuildAll_KeepsOrder(t *testing.T) {
	entries := []Entry{
		{PlatformVersion: "13", BuildRevision: "9030017"},
		{PlatformVersion: "5.0.2_r3", BuildRevision: "r0"},
		{PlatformVersion: "15", BuildRevision: "12543294"},
	}
	pairs := BuildAll(entries, 7)
	if len(pairs) != len(entries) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(entries))
	}
	for i, e := range entries {
		want := e.PlatformVersion + "-robolectric-" + e.BuildRevision
		if pairs[i].Plain.Version != want {
			t.Errorf("pairs[%d].Plain.Version = %q, want %q", i, pairs[i].Plain.Version, want)
		}
	}
}
