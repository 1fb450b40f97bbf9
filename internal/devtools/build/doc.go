// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Build cross-compiles figletctl for the targets listed in release.toml.

# Usage

	$ go tool build [flags]

Artifacts are placed into the dist directory (dist by default) together with
a SHA256SUMS file, and a summary table is printed when all builds succeed.
Artifacts are named name-tag-os-arch, with .exe appended on Windows.

# Selecting targets

The -targets flag takes a comma- or space-separated list of os or os/arch
entries and an optional tier bound:

	$ go tool build -targets linux,darwin/arm64
	$ go tool build -targets 'tier<=2'

Tier 1 targets are built and tested in CI, tier 2 targets are built in CI, and
tier 3 targets are built on a best-effort basis.

# Watching

With -watch, only the host target is built, and it's rebuilt each time a Go
source file, go.mod or release.toml changes. Press Ctrl+C to stop.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
