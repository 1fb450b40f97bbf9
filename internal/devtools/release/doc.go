// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Release publishes artifacts built by 'go tool build' as a GitHub release.

This tool is designed to be run within a GitHub Actions workflow after a tag
is pushed.

# Usage

	$ go tool release [flags] <tag>

It verifies the artifacts against dist/SHA256SUMS, takes release notes from
the CHANGELOG.md section for the tag, writes an Atom feed of all releases to
dist/releases.xml and then creates the release (unless it already exists) and
uploads the artifacts that it doesn't have yet.

With -n, it only logs what would be done.

# Environment Variables

  - GITHUB_TOKEN: A token with permission to write releases. Not needed
    with -n.
  - GITHUB_REPOSITORY: The repository in owner/repo form. GitHub Actions
    sets it automatically.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
