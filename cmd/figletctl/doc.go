// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Figletctl prints a message as FIGlet ASCII art.

# Usage

	$ figletctl [flags] <message>

The message is rendered in the "standard" font and written to standard
output. If message is "-", it is read from standard input.

	$ figletctl hello
	  _              _   _
	 | |__     ___  | | | |   ___
	 | '_ \   / _ \ | | | |  / _ \
	 | | | | |  __/ | | | | | (_) |
	 |_| |_|  \___| |_| |_|  \___/

Use -list-fonts to see the embedded fonts, -font to pick one of them and
-font-file to load a .flf font from disk. With -strict, characters outside of
printable ASCII are an error instead of being printed as '?'.

# Installation

Prebuilt binaries for each supported platform are attached to every GitHub
release, along with a SHA256SUMS file. Or build from source:

	$ go install go.astrophena.name/figletctl/cmd/figletctl@latest
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
