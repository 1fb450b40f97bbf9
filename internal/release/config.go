// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package release cross-compiles figletctl for a build matrix and publishes the
results as a GitHub release.

# Configuration

The build matrix lives in release.toml at the repository root:

	name = "figletctl"
	package = "./cmd/figletctl"
	dist = "dist"
	ldflags = ["-s", "-w"]

	[[target]]
	os = "linux"
	arch = "amd64"
	tier = 1

Each target is built with the Go toolchain by setting GOOS and GOARCH; no
external cross toolchain is involved since cgo is disabled.

# Artifacts

Artifacts are named name-version-os-arch, with ".exe" appended for Windows,
and placed into the dist directory next to a SHA256SUMS file in the format
produced by sha256sum(1).
*/
package release

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Possible errors.
var (
	ErrInvalidConfig = errors.New("invalid release config")
	ErrNoMatch       = errors.New("no target matches")
)

// Tier is a support tier of a target.
type Tier int

// Support tiers.
const (
	// Tier1 targets are built and tested in CI.
	Tier1 Tier = 1
	// Tier2 targets are built in CI, but not tested.
	Tier2 Tier = 2
	// Tier3 targets are built on a best effort basis.
	Tier3 Tier = 3
)

// Target is a platform to build for.
type Target struct {
	OS   string `toml:"os"`
	Arch string `toml:"arch"`
	Tier Tier   `toml:"tier"`
}

func (t Target) String() string { return t.OS + "/" + t.Arch }

// Ext returns the executable file extension for the target's OS.
func (t Target) Ext() string {
	if t.OS == "windows" {
		return ".exe"
	}
	return ""
}

// Config represents a release configuration.
type Config struct {
	// Name is the program name used as the artifact name prefix.
	Name string `toml:"name"`
	// Package is the main package to build.
	Package string `toml:"package"`
	// Dist is the directory where artifacts are placed. If empty, "dist" is
	// used.
	Dist string `toml:"dist"`
	// LDFlags are passed to the linker.
	LDFlags []string `toml:"ldflags"`
	// Targets is the build matrix.
	Targets []Target `toml:"target"`
}

// LoadConfig reads and parses a release configuration file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseConfig parses and validates a release configuration.
func ParseConfig(b []byte) (*Config, error) {
	c := new(Config)
	md, err := toml.Decode(string(b), c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	if c.Package == "" {
		return fmt.Errorf("%w: missing package", ErrInvalidConfig)
	}
	if c.Dist == "" {
		c.Dist = "dist"
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidConfig)
	}

	seen := make(map[string]bool)
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.OS == "" || t.Arch == "" {
			return fmt.Errorf("%w: target #%d needs both os and arch", ErrInvalidConfig, i+1)
		}
		if t.Tier == 0 {
			t.Tier = Tier1
		}
		if t.Tier < Tier1 || t.Tier > Tier3 {
			return fmt.Errorf("%w: target %s has tier %d, must be between 1 and 3", ErrInvalidConfig, t, t.Tier)
		}
		if seen[t.String()] {
			return fmt.Errorf("%w: duplicate target %s", ErrInvalidConfig, t)
		}
		seen[t.String()] = true
	}
	return nil
}

// Select returns targets matching filter, in configuration order.
//
// The filter is a list of entries separated by commas or whitespace. An entry
// is either an OS ("linux"), an OS and architecture ("linux/arm64") or a tier
// bound ("tier<=2"). An empty filter selects every target.
func (c *Config) Select(filter string) ([]Target, error) {
	var (
		platforms []string
		maxTier   = Tier3
	)
	for _, f := range strings.FieldsFunc(filter, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		if bound, ok := strings.CutPrefix(f, "tier<="); ok {
			n, err := strconv.Atoi(bound)
			if err != nil || Tier(n) < Tier1 || Tier(n) > Tier3 {
				return nil, fmt.Errorf("invalid tier bound %q", f)
			}
			maxTier = Tier(n)
			continue
		}
		platforms = append(platforms, f)
	}

	for _, p := range platforms {
		found := false
		for _, t := range c.Targets {
			if t.matches(p) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w %q", ErrNoMatch, p)
		}
	}

	var targets []Target
	for _, t := range c.Targets {
		if t.Tier > maxTier {
			continue
		}
		if len(platforms) > 0 && !matchesAny(t, platforms) {
			continue
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, filter)
	}
	return targets, nil
}

func (t Target) matches(platform string) bool {
	if goos, goarch, ok := strings.Cut(platform, "/"); ok {
		return t.OS == goos && t.Arch == goarch
	}
	return t.OS == platform
}

func matchesAny(t Target, platforms []string) bool {
	for _, p := range platforms {
		if t.matches(p) {
			return true
		}
	}
	return false
}

// ArtifactName returns the file name of the executable built for t. If
// version is empty, it is omitted.
func ArtifactName(name, version string, t Target) string {
	parts := []string{name}
	if version != "" {
		parts = append(parts, version)
	}
	parts = append(parts, t.OS, t.Arch)
	return strings.Join(parts, "-") + t.Ext()
}
