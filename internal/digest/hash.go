package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read buffer used by HashFile. Platform jars can be
// hundreds of megabytes, so files are never loaded whole.
const ChunkSize = 1024 * 1024

// Empty is the digest of zero bytes.
const Empty Digest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Digest is a lowercase hex SHA-256 of a file's content.
type Digest string

func (d Digest) String() string {
	return string(d)
}

// HashFile computes the SHA-256 of the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	d, err := HashReader(f, ChunkSize)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return d, nil
}

// HashReader feeds r into SHA-256 in chunks of chunkSize bytes.
// The result does not depend on chunkSize.
func HashReader(r io.Reader, chunkSize int) (Digest, error) {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// HashExistingFiles hashes every path that can be read and skips the rest.
// Returns a map of path → digest.
func HashExistingFiles(paths []string) map[string]Digest {
	result := make(map[string]Digest, len(paths))
	for _, p := range paths {
		d, err := HashFile(p)
		if err != nil {
			continue
		}
		result[p] = d
	}
	return result
}

// ParseDigest validates s as a 64-character lowercase hex SHA-256.
func ParseDigest(s string) (Digest, error) {
	if len(s) != sha256.Size*2 {
		return "", fmt.Errorf("digest is %d characters, want %d", len(s), sha256.Size*2)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("digest %q is not lowercase hex", s)
		}
	}
	return Digest(s), nil
}
