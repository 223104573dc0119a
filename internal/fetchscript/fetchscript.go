// Package fetchscript keeps the shell scripts that pre-fetch android-all
// jars with mvn in sync with the catalog.
package fetchscript

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flo-mic/allmeta/internal/catalog"
)

const (
	// PlainScript lists fetch commands for the android-all jars.
	PlainScript = "fetch-robolectric-dependencies.sh"

	// InstrumentedScript lists fetch commands for the pre-instrumented jars.
	InstrumentedScript = "fetch-robolectric-preinstrumented-dependencies.sh"
)

// Write regenerates both scripts in dir with one "<prefix><coordinate>" line
// per catalog entry, in catalog order. Existing scripts are replaced, not
// appended to.
//
// A missing dir is not an error: a diagnostic goes to log and nothing is
// written.
func Write(dir, prefix string, pairs []catalog.Pair, log io.Writer) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && !info.IsDir():
		fmt.Fprintf(log, "[allmeta] Failed to find shell directory %s, skipping fetch scripts.\n", dir)
		return nil
	case err != nil:
		return fmt.Errorf("checking shell directory: %w", err)
	}
	fmt.Fprintf(log, "[allmeta] The shell directory exists, and we will update it.\n")

	plain, err := recreate(filepath.Join(dir, PlainScript), log)
	if err != nil {
		return err
	}
	defer plain.Close()

	instrumented, err := recreate(filepath.Join(dir, InstrumentedScript), log)
	if err != nil {
		return err
	}
	defer instrumented.Close()

	for _, p := range pairs {
		if _, err := fmt.Fprintf(plain, "%s%s\n", prefix, p.Plain); err != nil {
			return fmt.Errorf("writing %s: %w", plain.Name(), err)
		}
		if _, err := fmt.Fprintf(instrumented, "%s%s\n", prefix, p.Instrumented); err != nil {
			return fmt.Errorf("writing %s: %w", instrumented.Name(), err)
		}
	}

	if err := plain.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", plain.Name(), err)
	}
	if err := instrumented.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", instrumented.Name(), err)
	}
	return nil
}

// recreate deletes path if present and creates it empty and executable.
func recreate(path string, log io.Writer) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(log, "[allmeta] %s exists, delete and create new file.\n", path)
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	// The umask may have stripped the execute bits.
	if err := os.Chmod(path, 0755); err != nil {
		f.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return f, nil
}
