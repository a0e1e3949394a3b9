package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"omega/internal/omegaerr"
)

// ValidatePath rejects empty paths, absolute paths, and any path
// containing a ".." traversal segment, per spec.md §6's "Replay records
// live at a caller-chosen, path-validated location (no parent-directory
// traversal, no absolute paths)."
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return omegaerr.New(omegaerr.CodeStoragePathInvalid, "path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return omegaerr.Newf(omegaerr.CodeStoragePathInvalid, "path %q must not be absolute", path)
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return omegaerr.Newf(omegaerr.CodeStoragePathInvalid, "path %q must not contain parent-directory traversal", path)
		}
	}
	return nil
}

// SaveManifest writes a manifest.sha256-style file at path: one
// "hexdigest  name" line per entry in files, sorted by name so the
// output is deterministic. files maps a logical artifact name to its
// on-disk path.
func SaveManifest(path string, files map[string]string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		digest, err := hashFile(files[name])
		if err != nil {
			return omegaerr.Newf(omegaerr.CodeStorageReadFailed, "hashing manifest entry %q: %v", name, err)
		}
		b.WriteString(digest)
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString("\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return omegaerr.Newf(omegaerr.CodeStorageWriteFailed, "creating manifest directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return omegaerr.Newf(omegaerr.CodeStorageWriteFailed, "writing manifest: %v", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
