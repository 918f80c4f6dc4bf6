package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/ContentAI/internal/certgen"
)

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := run([]string{"-dir", dir, "-hosts", "example.test, 10.0.0.1"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{certgen.CAFile, certgen.ServerCertFile, certgen.ServerKeyFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run([]string{"-dir", t.TempDir(), "-hosts", " , "}); err == nil {
		t.Error("expected error without hosts")
	}
}
