package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathRejectsEmpty(t *testing.T) {
	if err := ValidatePath(""); err == nil {
		t.Fatal("expected empty path to be rejected")
	}
}

func TestValidatePathRejectsAbsolute(t *testing.T) {
	if err := ValidatePath("/etc/passwd"); err == nil {
		t.Fatal("expected absolute path to be rejected")
	}
}

func TestValidatePathRejectsTraversal(t *testing.T) {
	if err := ValidatePath("runs/../../../etc/passwd"); err == nil {
		t.Fatal("expected parent-directory traversal to be rejected")
	}
}

func TestValidatePathAcceptsRelative(t *testing.T) {
	if err := ValidatePath("runs/RUN_0001/manifest.sha256"); err != nil {
		t.Fatalf("expected relative path to validate, got %v", err)
	}
}

func TestSaveManifestDeterministic(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(aPath, []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bPath, []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifestPath := filepath.Join("manifests", "manifest.sha256")
	absManifestPath := filepath.Join(dir, manifestPath)

	files := map[string]string{"b.txt": bPath, "a.txt": aPath}
	if err := SaveManifest(absManifestPath, files); err == nil {
		t.Fatal("expected absolute manifest path to be rejected by ValidatePath")
	}

	relCaller := func() error {
		return saveManifestRelative(t, dir, manifestPath, files)
	}
	if err := relCaller(); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}

	data, err := os.ReadFile(absManifestPath)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 manifest lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], "  a.txt") || !strings.HasSuffix(lines[1], "  b.txt") {
		t.Fatalf("expected entries sorted by name, got %v", lines)
	}
}

// saveManifestRelative runs SaveManifest with the working directory
// changed to dir, since SaveManifest itself enforces a relative path.
func saveManifestRelative(t *testing.T, dir, relPath string, files map[string]string) error {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer os.Chdir(cwd)
	return SaveManifest(relPath, files)
}
