// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ChecksumsFile is the name of the checksum file in the dist directory.
const ChecksumsFile = "SHA256SUMS"

// ErrChecksumMismatch is returned by VerifyChecksums when a file doesn't
// match its recorded checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Checksum returns a hex-encoded SHA-256 checksum of the file at path.
func Checksum(path string) (string, error) {
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

// WriteChecksums writes the checksum file for arts into dir. Entries are
// sorted by file name.
func WriteChecksums(dir string, arts []*Artifact) error {
	sorted := slices.Clone(arts)
	slices.SortFunc(sorted, func(a, b *Artifact) int { return strings.Compare(a.Name(), b.Name()) })

	var buf bytes.Buffer
	for _, a := range sorted {
		fmt.Fprintf(&buf, "%s  %s\n", a.SHA256, a.Name())
	}
	return os.WriteFile(filepath.Join(dir, ChecksumsFile), buf.Bytes(), 0o644)
}

// VerifyChecksums checks every file listed in the checksum file in dir and
// returns their names in the order they are listed.
func VerifyChecksums(dir string) ([]string, error) {
	sums, err := readChecksums(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, s := range sums {
		got, err := Checksum(filepath.Join(dir, s.name))
		if err != nil {
			return nil, err
		}
		if got != s.sum {
			return nil, fmt.Errorf("%w: %s: want %s, got %s", ErrChecksumMismatch, s.name, s.sum, got)
		}
		names = append(names, s.name)
	}
	return names, nil
}

type checksum struct {
	sum, name string
}

func readChecksums(path string) ([]checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sums []checksum
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		sum, name, ok := strings.Cut(text, " ")
		// sha256sum marks binary mode with '*' and text mode with ' '.
		if ok && len(name) > 1 && (name[0] == ' ' || name[0] == '*') {
			name = name[1:]
		}
		if !ok || len(sum) != sha256.Size*2 || !validName(name) || seen[name] {
			return nil, fmt.Errorf("%s:%d: malformed line %q", path, line, text)
		}
		seen[name] = true
		sums = append(sums, checksum{sum: strings.ToLower(sum), name: name})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(sums) == 0 {
		return nil, fmt.Errorf("%s: no checksums", path)
	}
	return sums, nil
}

// validName reports whether name is a plain file name in the dist directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
