// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
)

// sha256 of "hello\n".
const helloSum = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

func writeArtifacts(t *testing.T, files map[string]string) (dir string, arts []*Artifact) {
	t.Helper()
	dir = t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		sum, err := Checksum(path)
		if err != nil {
			t.Fatal(err)
		}
		arts = append(arts, &Artifact{Path: path, SHA256: sum, Size: int64(len(content))})
	}
	return dir, arts
}

func TestChecksum(t *testing.T) {
	dir, _ := writeArtifacts(t, map[string]string{"hello": "hello\n"})
	sum, err := Checksum(filepath.Join(dir, "hello"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, sum, helloSum)

	if _, err := Checksum(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestWriteChecksums(t *testing.T) {
	dir, arts := writeArtifacts(t, map[string]string{
		"figletctl-windows-amd64.exe": "windows",
		"figletctl-darwin-arm64":      "darwin",
		"figletctl-linux-amd64":       "linux",
	})
	if err := WriteChecksums(dir, arts); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	testutil.AssertEqual(t, len(lines), 3)
	for i, name := range []string{"figletctl-darwin-arm64", "figletctl-linux-amd64", "figletctl-windows-amd64.exe"} {
		if !strings.HasSuffix(lines[i], "  "+name) {
			t.Errorf("line %d: %q doesn't end with %q", i, lines[i], name)
		}
	}

	names, err := VerifyChecksums(dir)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, strings.Join(names, " "), "figletctl-darwin-arm64 figletctl-linux-amd64 figletctl-windows-amd64.exe")
}

func TestVerifyChecksumsMismatch(t *testing.T) {
	dir, arts := writeArtifacts(t, map[string]string{"figletctl-linux-amd64": "linux"})
	if err := WriteChecksums(dir, arts); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(arts[0].Path, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyChecksums(dir); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("want ErrChecksumMismatch, got %v", err)
	}
}

func TestVerifyChecksumsMissingArtifact(t *testing.T) {
	dir, arts := writeArtifacts(t, map[string]string{"figletctl-linux-amd64": "linux"})
	if err := WriteChecksums(dir, arts); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(arts[0].Path); err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyChecksums(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestReadChecksums(t *testing.T) {
	cases := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"text mode":    {in: helloSum + "  hello\n", want: "hello"},
		"binary mode":  {in: helloSum + " *hello\n", want: "hello"},
		"upper case":   {in: strings.ToUpper(helloSum) + "  hello\n", want: "hello"},
		"blank lines":  {in: "\n" + helloSum + "  a\n\n" + helloSum + "  b\n", want: "a b"},
		"empty":        {in: "", wantErr: true},
		"no name":      {in: helloSum + "\n", wantErr: true},
		"short sum":    {in: "abcdef  hello\n", wantErr: true},
		"path in name": {in: helloSum + "  ../hello\n", wantErr: true},
		"windows path": {in: helloSum + `  dist\hello` + "\n", wantErr: true},
		"dot":          {in: helloSum + "  .\n", wantErr: true},
		"dot dot":      {in: helloSum + "  ..\n", wantErr: true},
		"duplicate":    {in: helloSum + "  hello\n" + helloSum + " *hello\n", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ChecksumsFile)
			if err := os.WriteFile(path, []byte(tc.in), 0o644); err != nil {
				t.Fatal(err)
			}
			sums, err := readChecksums(path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", sums)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, s := range sums {
				testutil.AssertEqual(t, s.sum, helloSum)
				names = append(names, s.name)
			}
			testutil.AssertEqual(t, strings.Join(names, " "), tc.want)
		})
	}
}
