// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package devtools

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureRoot(t *testing.T) {
	t.Chdir(filepath.Join("..", ".."))
	EnsureRoot()
}

func TestEnsureRootPanics(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	defer func() {
		if recover() == nil {
			t.Fatal("EnsureRoot didn't panic outside of the repository root")
		}
	}()
	EnsureRoot()
}
