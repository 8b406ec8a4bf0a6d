package testutil

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

//go:embed fixtures
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name, relative to fixtures/.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// MustFixture is LoadFixture that fails the test on error.
func MustFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return data
}

// CopyQuestionPools copies the question pool fixtures into dir.
func CopyQuestionPools(t *testing.T, dir string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}

	entries, err := fs.ReadDir(fixturesFS, "fixtures/questions")
	if err != nil {
		t.Fatalf("Failed to list question fixtures: %v", err)
	}
	for _, e := range entries {
		data := MustFixture(t, "questions/"+e.Name())
		if err := os.WriteFile(filepath.Join(dir, e.Name()), data, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", e.Name(), err)
		}
	}
}
