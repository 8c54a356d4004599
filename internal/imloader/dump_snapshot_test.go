package imloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/mike-fabian/m17n-lib-sub004/internal/snapshot"
)

func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

// TestCompiledFixtureStructure snapshots the compiled trie structure of
// every description fixture, catching accidental changes to map
// compilation, branch inheritance, and keyseq expansion.
func TestCompiledFixtureStructure(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("..", "..", "testdata", "descriptions"))
	if err != nil {
		t.Fatalf("reading fixture dir: %v", err)
	}
	for _, e := range entries {
		t.Run(e.Name(), func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "descriptions", e.Name()))
			if err != nil {
				t.Fatalf("reading fixture: %v", err)
			}
			snapshot.MatchDefDump(t, string(data))
		})
	}
}
